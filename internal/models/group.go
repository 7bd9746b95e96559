package models

import (
	"errors"
	"slices"
)

// Document types of groups and invitations.
const (
	TypeGroup           = "group"
	TypeGroupInvitation = "groupInvitation"
)

// PrivateGroupName is the reserved name of every user's private group.
const PrivateGroupName = "プライベート"

// Group represents a set of users sharing transactions.
//
// Invariants kept by the workflow: Owner is an element of Members, Members
// has no duplicates, and PrivateGroupName is used only for the group
// created at verification.
type Group struct {
	// ID is the document ID (UUID format).
	ID string `json:"_id,omitempty"`

	// Name is the display name of the group (e.g., "Trip", "Roommates").
	Name string `json:"name"`

	// Owner is the user ID of the owner.
	Owner string `json:"owner"`

	// Members lists the user IDs of every member, owner included.
	Members []string `json:"members"`
}

// IsPrivate reports whether this is a private group.
func (g *Group) IsPrivate() bool {
	return g.Name == PrivateGroupName
}

// HasMember reports whether userID is a member.
func (g *Group) HasMember(userID string) bool {
	return slices.Contains(g.Members, userID)
}

// OtherMembers returns the members other than userID, deduplicated and sorted by ID.
func (g *Group) OtherMembers(userID string) []string {
	var others []string
	for _, m := range g.Members {
		if m != userID && !slices.Contains(others, m) {
			others = append(others, m)
		}
	}
	slices.Sort(others)
	return others
}

// Validate checks the fields required of a stored group.
func (g *Group) Validate() error {
	switch {
	case g.ID == "":
		return errors.New("group: missing _id")
	case g.Name == "":
		return errors.New("group: missing name")
	case g.Owner == "":
		return errors.New("group: missing owner")
	}
	return nil
}

// GroupInvitation represents a pending offer for a user to join a group.
type GroupInvitation struct {
	// ID is the document ID (UUID format).
	ID string `json:"_id,omitempty"`

	// GroupID references the target group.
	GroupID string `json:"groupId"`

	// GroupName snapshots the group name at invitation time. Display only.
	GroupName string `json:"groupName"`

	// Invitee is the user ID of the invited user.
	Invitee string `json:"invitee"`

	// InvitedBy is the user ID of the inviting member.
	InvitedBy string `json:"invitedBy"`
}

// Validate checks the fields required of a stored invitation.
func (i *GroupInvitation) Validate() error {
	switch {
	case i.ID == "":
		return errors.New("groupInvitation: missing _id")
	case i.GroupID == "":
		return errors.New("groupInvitation: missing groupId")
	case i.Invitee == "":
		return errors.New("groupInvitation: missing invitee")
	}
	return nil
}
