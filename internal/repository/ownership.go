package repository

import (
	"context"

	"fetchfolio/internal/models"
	"fetchfolio/internal/policy"
)

// OwnershipResolver walks the ownership chain of a target entity child-first
// (note -> command -> dog -> owner) and produces the policy.Resource the
// authorization check needs. A missing link anywhere in the chain surfaces as
// a NotFound error, never as a partial chain.
type OwnershipResolver struct {
	dogs     DogRepository
	commands CommandRepository
	events   EventRepository
}

// NewOwnershipResolver returns a resolver backed by the given repositories.
func NewOwnershipResolver(dogs DogRepository, commands CommandRepository, events EventRepository) *OwnershipResolver {
	return &OwnershipResolver{dogs: dogs, commands: commands, events: events}
}

// DogChain resolves a dog and its owner.
func (o *OwnershipResolver) DogChain(ctx context.Context, dogID uint) (*models.Dog, policy.Resource, error) {
	dog, err := o.dogs.GetByID(ctx, dogID)
	if err != nil {
		return nil, policy.Resource{}, err
	}
	res := policy.DogResource(dog.OwnerUsername, policy.DogRef{ID: dog.ID, Private: dog.Private})
	return dog, res, nil
}

// CommandChain resolves a command, its dog and the owner.
func (o *OwnershipResolver) CommandChain(ctx context.Context, commandID uint) (*models.Command, policy.Resource, error) {
	cmd, err := o.commands.GetByID(ctx, commandID)
	if err != nil {
		return nil, policy.Resource{}, err
	}
	dog, err := o.dogs.GetByID(ctx, cmd.DogID)
	if err != nil {
		return nil, policy.Resource{}, err
	}
	res := policy.CommandResource(
		dog.OwnerUsername,
		policy.DogRef{ID: dog.ID, Private: dog.Private},
		policy.CommandRef{ID: cmd.ID},
	)
	return cmd, res, nil
}

// NoteChain resolves a command note, its command, the dog and the owner.
func (o *OwnershipResolver) NoteChain(ctx context.Context, noteID uint) (*models.CommandNote, policy.Resource, error) {
	note, err := o.commands.GetNoteByID(ctx, noteID)
	if err != nil {
		return nil, policy.Resource{}, err
	}
	cmd, err := o.commands.GetByID(ctx, note.CommandID)
	if err != nil {
		return nil, policy.Resource{}, err
	}
	dog, err := o.dogs.GetByID(ctx, cmd.DogID)
	if err != nil {
		return nil, policy.Resource{}, err
	}
	res := policy.NoteResource(
		dog.OwnerUsername,
		policy.DogRef{ID: dog.ID, Private: dog.Private},
		policy.CommandRef{ID: cmd.ID},
		policy.NoteRef{ID: note.ID},
	)
	return note, res, nil
}

// EventChain resolves an event, its dog and the owner.
func (o *OwnershipResolver) EventChain(ctx context.Context, eventID uint) (*models.Event, policy.Resource, error) {
	event, err := o.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, policy.Resource{}, err
	}
	dog, err := o.dogs.GetByID(ctx, event.DogID)
	if err != nil {
		return nil, policy.Resource{}, err
	}
	res := policy.EventResource(
		dog.OwnerUsername,
		policy.DogRef{ID: dog.ID, Private: dog.Private},
		policy.EventRef{ID: event.ID},
	)
	return event, res, nil
}
