// Package profile holds the canonical user profile consumed by the ranking engine
// and the adapter that builds it from raw VK user records.
package profile

import (
	"fmt"
	"slices"
)

// Sex follows the VK coding.
type Sex int

const (
	SexUnknown Sex = 0
	SexFemale  Sex = 1
	SexMale    Sex = 2
)

// Opposite returns the opposite sex, or SexUnknown when s is not set.
func (s Sex) Opposite() Sex {
	switch s {
	case SexFemale:
		return SexMale
	case SexMale:
		return SexFemale
	default:
		return SexUnknown
	}
}

func (s Sex) String() string {
	switch s {
	case SexFemale:
		return "female"
	case SexMale:
		return "male"
	default:
		return "unknown"
	}
}

// Profile is one requester or candidate. A nil optional field means the value is unknown.
type Profile struct {
	ID        int64
	FirstName string
	LastName  string

	Age       *int
	CityID    *int
	CityTitle string
	Sex       *Sex
	Relation  *int

	// word mode
	Activities *string
	Interests  *string
	InspiredBy *string

	// phrase mode
	Music  *string
	Movies *string
	TV     *string
	Books  *string
	Games  *string

	Political  *int
	ReligionID *int
	LifeMain   *int
	PeopleMain *int
	Smoking    *int
	Alcohol    *int

	// Languages is a comma separated list of language names.
	Languages *string

	IsClosed        bool
	CanAccessClosed bool

	// Photos are the most liked profile photos. Filled by the photos filter step.
	Photos []Photo
}

// Photo is one profile photo.
type Photo struct {
	ID      int64
	OwnerID int64
	Likes   int
	URL     string
}

// Attachment is the photo reference VK messages and likes accept.
func (p Photo) Attachment() string {
	return fmt.Sprintf("photo%d_%d", p.OwnerID, p.ID)
}

// Name returns "First Last".
func (p *Profile) Name() string {
	return fmt.Sprintf("%s %s", p.FirstName, p.LastName)
}

// URL returns the public page of the user.
func (p *Profile) URL() string {
	return fmt.Sprintf("https://vk.com/id%d", p.ID)
}

// Profiles is an ordered list of profiles. Order is meaningful: it breaks score ties.
type Profiles struct {
	Items []*Profile
}

func (p *Profiles) Len() int {
	return len(p.Items)
}

func (p *Profiles) IDs() []int64 {
	ids := make([]int64, 0, len(p.Items))
	for _, item := range p.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

func (p *Profiles) FindByID(id int64) *Profile {
	for _, item := range p.Items {
		if item.ID == id {
			return item
		}
	}
	return nil
}

// Exclude removes profiles with the given ids, preserving the order of the rest,
// and returns the removed ids.
func (p *Profiles) Exclude(ids []int64) []int64 {
	return p.ExcludeFunc(func(item *Profile) bool {
		return slices.Contains(ids, item.ID)
	})
}

// ExcludeFunc removes profiles for which drop returns true, preserving order.
func (p *Profiles) ExcludeFunc(drop func(*Profile) bool) []int64 {
	var excluded []int64
	kept := p.Items[:0]
	for _, item := range p.Items {
		if drop(item) {
			excluded = append(excluded, item.ID)
			continue
		}
		kept = append(kept, item)
	}
	clear(p.Items[len(kept):])
	p.Items = kept
	return excluded
}
