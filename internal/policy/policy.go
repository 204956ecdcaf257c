// Package policy decides whether a resolved identity may act on a resource.
//
// The policy is a pure function of its inputs: it never touches storage, so
// it can be tested without a database or HTTP machinery. Authentication
// (resolving a bearer token to an identity) lives in the middleware package;
// this package only answers permit/deny questions about an already-resolved
// identity and an already-resolved ownership chain.
package policy

// Action is the kind of operation requested against a resource.
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Identity is the result of authenticating a request: either a concrete
// username or the anonymous marker.
type Identity struct {
	Username  string
	Anonymous bool
}

// Anonymous returns the identity used for requests without a valid credential.
func Anonymous() Identity {
	return Identity{Anonymous: true}
}

// ForUser returns the identity of an authenticated user.
func ForUser(username string) Identity {
	return Identity{Username: username}
}

// DogRef identifies a dog inside a resource chain.
type DogRef struct {
	ID      uint
	Private bool
}

// CommandRef identifies a command inside a resource chain.
type CommandRef struct {
	ID uint
}

// NoteRef identifies a command note inside a resource chain.
type NoteRef struct {
	ID uint
}

// EventRef identifies an event inside a resource chain.
type EventRef struct {
	ID uint
}

// Resource describes the position of a target in the ownership graph: the
// chain of entities from the root User down to the target. The deepest
// non-nil reference is the target itself. A Resource with only an owner set
// targets the user record.
type Resource struct {
	OwnerUsername string
	Dog           *DogRef
	Command       *CommandRef
	Note          *NoteRef
	Event         *EventRef
}

// UserResource targets a user record itself.
func UserResource(owner string) Resource {
	return Resource{OwnerUsername: owner}
}

// DogResource targets a dog.
func DogResource(owner string, dog DogRef) Resource {
	return Resource{OwnerUsername: owner, Dog: &dog}
}

// CommandResource targets a command through its dog.
func CommandResource(owner string, dog DogRef, cmd CommandRef) Resource {
	return Resource{OwnerUsername: owner, Dog: &dog, Command: &cmd}
}

// NoteResource targets a command note through its command and dog.
func NoteResource(owner string, dog DogRef, cmd CommandRef, note NoteRef) Resource {
	return Resource{OwnerUsername: owner, Dog: &dog, Command: &cmd, Note: &note}
}

// EventResource targets an event through its dog.
func EventResource(owner string, dog DogRef, event EventRef) Resource {
	return Resource{OwnerUsername: owner, Dog: &dog, Event: &event}
}

// targetsDog reports whether the dog itself, not one of its children, is the
// target of the request.
func (r Resource) targetsDog() bool {
	return r.Dog != nil && r.Command == nil && r.Note == nil && r.Event == nil
}

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  string
}

func permit(reason string) Decision { return Decision{Allowed: true, Reason: reason} }
func deny(reason string) Decision   { return Decision{Allowed: false, Reason: reason} }

// Authorize evaluates the ownership rules top to bottom; the first matching
// rule wins. The model is strictly single-tenant: the only positive rule is
// "you may act on your own subtree", with a single visibility carve-out for
// reading another user's non-private dog. There is no admin override and no
// role system.
func Authorize(id Identity, action Action, res Resource) Decision {
	if id.Anonymous {
		return deny("anonymous access")
	}

	if res.OwnerUsername != id.Username {
		if action == ActionRead && res.targetsDog() && !res.Dog.Private {
			return permit("public dog")
		}
		return deny("resource owned by another user")
	}

	return permit("owner")
}
