// Package preprocess rewrites class-syntax command sources into
// registration calls.
//
// A command class is a top-level struct type embedding cmdapi.Meta,
// documented by a comment carrying annotations:
//
//	/**
//	 * Encodes the selected text.
//	 *
//	 * @uuid 5B0F7E7A-3B3A-4C2B-9C55-0C1F3C7D8A10
//	 * @description Base64-encode text
//	 * @delay 200
//	 */
//	type Base64Encode struct {
//		cmdapi.Meta
//	}
//
// Transform appends a setup function after each command class, together
// with an init function calling it. The setup function constructs an
// instance, runs its Construct method when the class declares one, copies
// the annotation values onto it and hands it to cmdapi.AddObjectCommand
// with the Preview, Execute, Load and Init methods the class declares
// bridged into handlers. Only methods declared on the class itself are
// bridged; a class built on a base type declares its own handlers that
// delegate to the base. Recognized annotations are @delay, @preview,
// @license, @author, @icon, @homepage, @description, @uuid and @noncommand;
// the rest of the comment is the help text. Types whose name starts with
// an underscore and @noncommand types are left alone.
//
// The extent of a class body is found by a scanner that tracks brace depth
// together with string, rune, raw string and comment state; braces inside
// literals and comments do not count.
package preprocess
