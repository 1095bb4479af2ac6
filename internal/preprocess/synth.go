package preprocess

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// SetupPrefix starts the name of the generated setup function of a class.
const SetupPrefix = "ishellSetup"

// SetupFunc returns the name of the setup function generated for class.
func SetupFunc(class string) string {
	return SetupPrefix + class
}

// handlers maps the handler methods a class may declare to the closure
// bridging them into a cmdapi.Object field.
var handlers = []struct {
	method string
	bridge string
}{
	{"Preview", `func(ctx cmdapi.Context, args cmdapi.Args, display cmdapi.Display, bin cmdapi.Bin) error {
		return command.Preview(ctx, args, display, bin)
	}`},
	{"Execute", `func(ctx cmdapi.Context, args cmdapi.Args, bin cmdapi.Bin) error {
		return command.Execute(ctx, args, bin)
	}`},
	{"Load", `func(ctx cmdapi.Context, bin cmdapi.Bin) error {
		return command.Load(ctx, bin)
	}`},
	{"Init", `func(ctx cmdapi.Context, display cmdapi.Display, bin cmdapi.Bin) error {
		return command.Init(ctx, display, bin)
	}`},
}

// SetupBlock renders the registration of one command class: construct an
// instance, assign the annotation values that are present, wire the
// handler methods the class declares and register it. The block is a
// setup function plus the init function calling it.
func SetupBlock(c Class, p Properties) string {
	var b strings.Builder

	fn := SetupFunc(c.Name)
	fmt.Fprintf(&b, "\n\nfunc %s() {\n", fn)
	b.WriteString("\targs := cmdapi.ArgumentMap{}\n")
	fmt.Fprintf(&b, "\tcommand := &%s{}\n", c.Name)
	if c.HasMethod("Construct") {
		b.WriteString("\tcommand.Construct(args)\n")
	}
	b.WriteString("\n")

	assign := func(field, value string) {
		if value != "" {
			fmt.Fprintf(&b, "\tcommand.%s = %s\n", field, strconv.Quote(value))
		}
	}
	assign("Name", p.Name)
	if p.Delay > 0 {
		fmt.Fprintf(&b, "\tcommand.PreviewDelay = %d\n", p.Delay)
	}
	assign("PreviewText", p.Preview)
	assign("License", p.License)
	assign("Author", p.Author)
	assign("Icon", p.Icon)
	assign("Homepage", p.Homepage)
	assign("Description", p.Description)
	assign("Help", p.Help)
	assign("UUID", p.UUID)

	b.WriteString("\n\tobject := cmdapi.Object{Meta: command.Meta}\n")
	for _, h := range handlers {
		if c.HasMethod(h.method) {
			fmt.Fprintf(&b, "\tobject.%s = %s\n", h.method, h.bridge)
		}
	}
	b.WriteString("\tcmdapi.AddObjectCommand(object, args)\n}\n")

	fmt.Fprintf(&b, "\nfunc init() {\n\t%s()\n}\n", fn)
	return b.String()
}

// Transform rewrites class-syntax source into registration calls. Every
// command class gets its setup block right after its closing brace.
// Classes whose setup function is already declared are left alone, so
// transforming twice changes nothing.
func Transform(src string) (string, error) {
	d, err := scan(src)
	if err != nil {
		return "", err
	}

	type splice struct {
		at    int
		block string
	}
	var splices []splice
	for _, c := range d.classes {
		p := ClassProperties(c)
		if !IsCommand(c, p) || d.funcs[SetupFunc(c.Name)] {
			continue
		}
		splices = append(splices, splice{at: c.End, block: SetupBlock(c, p)})
	}
	if len(splices) == 0 {
		return src, nil
	}
	sort.Slice(splices, func(i, j int) bool { return splices[i].at < splices[j].at })

	var b strings.Builder
	last := 0
	for _, s := range splices {
		b.WriteString(src[last:s.at])
		b.WriteString(s.block)
		last = s.at
	}
	b.WriteString(src[last:])
	return b.String(), nil
}
