package cmdmanager_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestCmdManager(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Command Manager Suite")
}
