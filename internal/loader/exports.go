package loader

import (
	"reflect"

	"github.com/traefik/yaegi/interp"

	"github.com/intensifier/ishell/internal/cmdapi"
	"github.com/intensifier/ishell/internal/command"
	"github.com/intensifier/ishell/internal/namespace"
	"github.com/intensifier/ishell/internal/nountype"
)

// Import paths of the virtual packages visible to scripts.
const (
	APIPackage   = "ishell/cmdapi"
	UtilsPackage = "ishell/cmdutils"
)

func creatorSymbols(c cmdapi.Creator) map[string]reflect.Value {
	return map[string]reflect.Value{
		"CreateCommand":        reflect.ValueOf(c.CreateCommand),
		"CreateSearchCommand":  reflect.ValueOf(c.CreateSearchCommand),
		"MakeSearchCommand":    reflect.ValueOf(c.CreateSearchCommand),
		"CreateCaptureCommand": reflect.ValueOf(c.CreateCaptureCommand),
		"MakeCaptureCommand":   reflect.ValueOf(c.CreateCaptureCommand),
		"AddObjectCommand":     reflect.ValueOf(c.AddObjectCommand),
	}
}

// Symbols binds the virtual packages to the given surfaces. The binding
// plays the role of a script preamble: every interpreter gets its own,
// scoped to the namespace the script loads into.
func Symbols(ns string, api *namespace.APIProxy, utils *namespace.UtilsProxy) interp.Exports {
	apiSyms := creatorSymbols(api)
	for name, v := range map[string]reflect.Value{
		"FetchAborted":     reflect.ValueOf(api.FetchAborted),
		"DebugEnabled":     reflect.ValueOf(api.DebugEnabled),
		"Commands":         reflect.ValueOf(api.Commands),
		"GetCommandByName": reflect.ValueOf(api.GetCommandByName),
		"EnableCommand":    reflect.ValueOf(api.EnableCommand),
		"DisableCommand":   reflect.ValueOf(api.DisableCommand),

		"Namespace": reflect.ValueOf(ns),

		"OBJECT": reflect.ValueOf(command.RoleObject),
		"FOR":    reflect.ValueOf(command.RoleSubject),
		"TO":     reflect.ValueOf(command.RoleGoal),
		"FROM":   reflect.ValueOf(command.RoleSource),
		"NEAR":   reflect.ValueOf(command.RoleLocation),
		"AT":     reflect.ValueOf(command.RoleTime),
		"WITH":   reflect.ValueOf(command.RoleInstrument),
		"IN":     reflect.ValueOf(command.RoleFormat),
		"OF":     reflect.ValueOf(command.RoleModifier),
		"AS":     reflect.ValueOf(command.RoleAlias),
		"BY":     reflect.ValueOf(command.RoleCause),
		"ON":     reflect.ValueOf(command.RoleDependency),

		"ArbText":    reflect.ValueOf(nountype.ArbText),
		"NewList":    reflect.ValueOf(nountype.NewList),
		"NewNoun":    reflect.ValueOf(nountype.New),
		"Noun":       reflect.ValueOf((*nountype.Noun)(nil)),
		"List":       reflect.ValueOf((*nountype.List)(nil)),
		"Pattern":    reflect.ValueOf((*nountype.Pattern)(nil)),
		"Suggest":    reflect.ValueOf((*nountype.SuggestFunc)(nil)),
		"Suggestion": reflect.ValueOf((*nountype.Suggestion)(nil)),

		"Context":        reflect.ValueOf((*cmdapi.Context)(nil)),
		"Options":        reflect.ValueOf((*cmdapi.Options)(nil)),
		"SearchOptions":  reflect.ValueOf((*cmdapi.SearchOptions)(nil)),
		"CaptureOptions": reflect.ValueOf((*cmdapi.CaptureOptions)(nil)),
		"ParserSpec":     reflect.ValueOf((*cmdapi.ParserSpec)(nil)),
		"Args":           reflect.ValueOf((*cmdapi.Args)(nil)),
		"Arg":            reflect.ValueOf((*cmdapi.Arg)(nil)),
		"Display":        reflect.ValueOf((*cmdapi.Display)(nil)),
		"Bin":            reflect.ValueOf((*cmdapi.Bin)(nil)),
		"Command":        reflect.ValueOf((*cmdapi.Command)(nil)),
		"ArgumentMap":    reflect.ValueOf((*cmdapi.ArgumentMap)(nil)),
		"ArgumentList":   reflect.ValueOf((*cmdapi.ArgumentList)(nil)),
		"Argument":       reflect.ValueOf((*cmdapi.Argument)(nil)),
		"NounArgument":   reflect.ValueOf((*cmdapi.NounArgument)(nil)),
		"Meta":           reflect.ValueOf((*cmdapi.Meta)(nil)),
		"Object":         reflect.ValueOf((*cmdapi.Object)(nil)),
	} {
		apiSyms[name] = v
	}

	utilsSyms := creatorSymbols(utils)
	utilsSyms["OpenURL"] = reflect.ValueOf(utils.OpenURL)
	utilsSyms["Log"] = reflect.ValueOf(utils.Log)

	return interp.Exports{
		APIPackage + "/cmdapi":     apiSyms,
		UtilsPackage + "/cmdutils": utilsSyms,
	}
}
