package profile

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Fields is the users.get / users.search field list the adapter understands.
const Fields = "bdate,city,sex,relation,activities,interests,music,movies,tv,books,games,personal,is_closed,can_access_closed"

// Raw mirrors a VK user object. Only the adapter reads it.
type Raw struct {
	ID              int64        `mapstructure:"id"`
	FirstName       string       `mapstructure:"first_name"`
	LastName        string       `mapstructure:"last_name"`
	BDate           string       `mapstructure:"bdate"`
	City            *RawCity     `mapstructure:"city"`
	Sex             *int         `mapstructure:"sex"`
	Relation        *int         `mapstructure:"relation"`
	Activities      string       `mapstructure:"activities"`
	Interests       string       `mapstructure:"interests"`
	Music           string       `mapstructure:"music"`
	Movies          string       `mapstructure:"movies"`
	TV              string       `mapstructure:"tv"`
	Books           string       `mapstructure:"books"`
	Games           string       `mapstructure:"games"`
	Personal        *RawPersonal `mapstructure:"personal"`
	IsClosed        bool         `mapstructure:"is_closed"`
	CanAccessClosed bool         `mapstructure:"can_access_closed"`
}

type RawCity struct {
	ID    int    `mapstructure:"id"`
	Title string `mapstructure:"title"`
}

type RawPersonal struct {
	Political  int      `mapstructure:"political"`
	Langs      []string `mapstructure:"langs"`
	ReligionID int      `mapstructure:"religion_id"`
	InspiredBy string   `mapstructure:"inspired_by"`
	PeopleMain int      `mapstructure:"people_main"`
	LifeMain   int      `mapstructure:"life_main"`
	Smoking    int      `mapstructure:"smoking"`
	Alcohol    int      `mapstructure:"alcohol"`
}

// Adapter converts raw VK records into profiles.
type Adapter struct {
	now func() time.Time
}

// NewAdapter creates an adapter computing ages against the wall clock.
func NewAdapter() *Adapter {
	return &Adapter{now: time.Now}
}

// Decode turns one decoded JSON item (map[string]any) into a Profile.
func (a *Adapter) Decode(item any) (*Profile, error) {
	var raw Raw
	cfg := &mapstructure.DecoderConfig{
		Result:           &raw,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating decoder: %w", err)
	}
	if err := decoder.Decode(item); err != nil {
		return nil, fmt.Errorf("decoding vk user: %w", err)
	}
	return a.Normalize(&raw), nil
}

// DecodeAll decodes a list of items, keeping their order.
func (a *Adapter) DecodeAll(items []any) (*Profiles, error) {
	profiles := &Profiles{Items: make([]*Profile, 0, len(items))}
	for _, item := range items {
		p, err := a.Decode(item)
		if err != nil {
			return nil, err
		}
		profiles.Items = append(profiles.Items, p)
	}
	return profiles, nil
}

// Normalize maps a raw record onto the canonical profile. Empty strings and
// zero codes become unknown; relation keeps an explicit 0 because it is a
// meaningful "not specified" code.
func (a *Adapter) Normalize(raw *Raw) *Profile {
	p := &Profile{
		ID:              raw.ID,
		FirstName:       raw.FirstName,
		LastName:        raw.LastName,
		Age:             ageFromBDate(raw.BDate, a.now()),
		Relation:        raw.Relation,
		Activities:      text(raw.Activities),
		Interests:       text(raw.Interests),
		Music:           text(raw.Music),
		Movies:          text(raw.Movies),
		TV:              text(raw.TV),
		Books:           text(raw.Books),
		Games:           text(raw.Games),
		IsClosed:        raw.IsClosed,
		CanAccessClosed: raw.CanAccessClosed,
	}

	if raw.City != nil {
		p.CityID = code(raw.City.ID)
		p.CityTitle = raw.City.Title
	}

	if raw.Sex != nil {
		if s := Sex(*raw.Sex); s == SexFemale || s == SexMale {
			p.Sex = &s
		}
	}

	if personal := raw.Personal; personal != nil {
		p.InspiredBy = text(personal.InspiredBy)
		p.Political = code(personal.Political)
		p.ReligionID = code(personal.ReligionID)
		p.LifeMain = code(personal.LifeMain)
		p.PeopleMain = code(personal.PeopleMain)
		p.Smoking = code(personal.Smoking)
		p.Alcohol = code(personal.Alcohol)
		p.Languages = languages(personal.Langs)
	}

	return p
}

func text(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func code(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}

func languages(langs []string) *string {
	cleaned := make([]string, 0, len(langs))
	for _, l := range langs {
		if l = strings.TrimSpace(l); l != "" {
			cleaned = append(cleaned, l)
		}
	}
	if len(cleaned) == 0 {
		return nil
	}
	joined := strings.Join(cleaned, ",")
	return &joined
}

// ageFromBDate parses VK "D.M.YYYY" birth dates. Dates without a year give no age.
func ageFromBDate(bdate string, now time.Time) *int {
	parts := strings.Split(strings.TrimSpace(bdate), ".")
	if len(parts) != 3 {
		return nil
	}

	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return nil
	}
	if month < 1 || month > 12 || day < 1 || day > 31 || year < 1900 {
		return nil
	}

	age := now.Year() - year
	if now.Month() < time.Month(month) || (now.Month() == time.Month(month) && now.Day() < day) {
		age--
	}
	if age < 0 {
		return nil
	}
	return &age
}
