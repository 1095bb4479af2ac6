// Package command defines the canonical command model of ishell and the
// normalizer that produces it from author declarations.
//
// # Declarations
//
// Command authors describe a command with Options. The normalizer accepts
// several historical shapes and reconciles them into one Command:
//
//   - Name and Names: either may be omitted; the primary name is always a
//     member of Names.
//   - Identity: UUID defaults to Homepage, then to Name; ID equals UUID.
//   - Arguments: a single noun (NounArgument), a role map keyed
//     "role[ label]" (RoleMap), or an explicit list (ArgumentList).
//   - Preview delay: a positive Timeout or PreviewDelay (milliseconds)
//     debounces the preview handler.
//
// # Registry
//
// Registry holds the ordered set of registered commands and enforces
// uniqueness of ID. Add reports ErrDuplicate for collisions; callers of the
// creation API treat that as a silent rejection.
//
// # Handlers
//
// Every handler receives the command's Bin as its last argument. Failures
// listed by IsBenign are expected during normal operation and are not
// logged by the dispatcher.
package command
