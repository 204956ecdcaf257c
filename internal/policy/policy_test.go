package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allActions = []Action{ActionRead, ActionCreate, ActionUpdate, ActionDelete}

func TestAuthorize_AnonymousAlwaysDenied(t *testing.T) {
	resources := []Resource{
		UserResource("jules"),
		DogResource("jules", DogRef{ID: 1, Private: false}),
		DogResource("jules", DogRef{ID: 2, Private: true}),
		CommandResource("jules", DogRef{ID: 1}, CommandRef{ID: 5}),
		NoteResource("jules", DogRef{ID: 1}, CommandRef{ID: 5}, NoteRef{ID: 9}),
		EventResource("jules", DogRef{ID: 1}, EventRef{ID: 3}),
	}

	for _, res := range resources {
		for _, action := range allActions {
			d := Authorize(Anonymous(), action, res)
			assert.False(t, d.Allowed, "anonymous %s on %+v", action, res)
		}
	}
}

func TestAuthorize_OwnerPermittedOnFullChain(t *testing.T) {
	id := ForUser("jules")
	resources := []Resource{
		UserResource("jules"),
		DogResource("jules", DogRef{ID: 1, Private: true}),
		CommandResource("jules", DogRef{ID: 1, Private: true}, CommandRef{ID: 5}),
		NoteResource("jules", DogRef{ID: 1}, CommandRef{ID: 5}, NoteRef{ID: 9}),
		EventResource("jules", DogRef{ID: 1}, EventRef{ID: 3}),
	}

	for _, res := range resources {
		for _, action := range allActions {
			d := Authorize(id, action, res)
			assert.True(t, d.Allowed, "owner %s on %+v: %s", action, res, d.Reason)
		}
	}
}

func TestAuthorize_CrossUserDeniedExceptPublicDogRead(t *testing.T) {
	id := ForUser("mallory")

	publicDog := DogResource("jules", DogRef{ID: 1, Private: false})
	privateDog := DogResource("jules", DogRef{ID: 2, Private: true})

	// The single carve-out: reading another user's non-private dog.
	assert.True(t, Authorize(id, ActionRead, publicDog).Allowed)

	// Everything else on someone else's subtree is denied.
	assert.False(t, Authorize(id, ActionRead, privateDog).Allowed)
	for _, action := range []Action{ActionCreate, ActionUpdate, ActionDelete} {
		assert.False(t, Authorize(id, action, publicDog).Allowed, "action %s", action)
		assert.False(t, Authorize(id, action, privateDog).Allowed, "action %s", action)
	}
}

func TestAuthorize_PublicDogCarveOutDoesNotReachChildren(t *testing.T) {
	id := ForUser("mallory")
	openDog := DogRef{ID: 1, Private: false}

	// Even when the dog is public, its commands, notes and events belong to
	// the owner alone.
	children := []Resource{
		CommandResource("jules", openDog, CommandRef{ID: 5}),
		NoteResource("jules", openDog, CommandRef{ID: 5}, NoteRef{ID: 9}),
		EventResource("jules", openDog, EventRef{ID: 3}),
	}
	for _, res := range children {
		d := Authorize(id, ActionRead, res)
		assert.False(t, d.Allowed, "read on %+v", res)
	}
}

func TestAuthorize_CrossUserUserRecordDenied(t *testing.T) {
	id := ForUser("mallory")
	for _, action := range allActions {
		d := Authorize(id, action, UserResource("jules"))
		assert.False(t, d.Allowed, "action %s", action)
	}
}

func TestAuthorize_DecisionReasons(t *testing.T) {
	assert.Equal(t, "anonymous access",
		Authorize(Anonymous(), ActionRead, UserResource("jules")).Reason)
	assert.Equal(t, "owner",
		Authorize(ForUser("jules"), ActionRead, UserResource("jules")).Reason)
	assert.Equal(t, "public dog",
		Authorize(ForUser("mallory"), ActionRead, DogResource("jules", DogRef{ID: 1})).Reason)
}
