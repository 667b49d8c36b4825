package queue

import (
	"strings"
	"time"

	"github.com/spigell/critique-matcher/internal/matching"
)

type User struct {
	ID       string `json:"id" yaml:"id" mapstructure:"id"`
	Username string `json:"username,omitempty" yaml:"username,omitempty" mapstructure:"username"`
	// WaterlooID is set for users verified through the university login.
	WaterlooID string `json:"waterloo_id,omitempty" yaml:"waterloo_id,omitempty" mapstructure:"waterloo_id"`
}

func (u *User) affiliated() bool {
	return u != nil && strings.TrimSpace(u.WaterlooID) != ""
}

func (u *User) id() string {
	if u == nil {
		return ""
	}
	return u.ID
}

type Resume struct {
	ID         string `json:"id" yaml:"id" mapstructure:"id"`
	Name       string `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Uploader   *User  `json:"uploader,omitempty" yaml:"uploader,omitempty" mapstructure:"uploader"`
	Industries string `json:"industries" yaml:"industries" mapstructure:"industries"`
}

// Critique is a resume waiting for, or already assigned to, a critiquer.
type Critique struct {
	ID        string     `json:"id" yaml:"id" mapstructure:"id"`
	Resume    *Resume    `json:"resume" yaml:"resume" mapstructure:"resume"`
	Critiquer *User      `json:"critiquer,omitempty" yaml:"critiquer,omitempty" mapstructure:"critiquer"`
	Submitted bool       `json:"submitted" yaml:"submitted" mapstructure:"submitted"`
	CreatedOn time.Time  `json:"created_on" yaml:"created_on" mapstructure:"created_on"`
	MatchedOn *time.Time `json:"matched_on,omitempty" yaml:"matched_on,omitempty" mapstructure:"matched_on"`
}

// CritiquerRequest is a user offering to critique resumes of the listed industries.
type CritiquerRequest struct {
	ID         string    `json:"id" yaml:"id" mapstructure:"id"`
	Critiquer  *User     `json:"critiquer" yaml:"critiquer" mapstructure:"critiquer"`
	Industries string    `json:"industries" yaml:"industries" mapstructure:"industries"`
	CreatedOn  time.Time `json:"created_on" yaml:"created_on" mapstructure:"created_on"`
}

func (c *Critique) Industries() string {
	if c.Resume == nil {
		return ""
	}
	return c.Resume.Industries
}

func (c *Critique) Uploader() string {
	if c.Resume == nil {
		return ""
	}
	return c.Resume.Uploader.id()
}

func (c *Critique) Pending() bool {
	return c.Critiquer == nil && !c.Submitted
}

func (c *Critique) Item() matching.Item {
	var affiliated bool
	if c.Resume != nil {
		affiliated = c.Resume.Uploader.affiliated()
	}

	return matching.Item{
		ID:         c.ID,
		Tags:       SplitIndustries(c.Industries()),
		CreatedAt:  c.CreatedOn,
		Owner:      c.Uploader(),
		Affiliated: affiliated,
	}
}

func (r *CritiquerRequest) Item() matching.Item {
	return matching.Item{
		ID:         r.ID,
		Tags:       SplitIndustries(r.Industries),
		CreatedAt:  r.CreatedOn,
		Owner:      r.Critiquer.id(),
		Affiliated: r.Critiquer.affiliated(),
	}
}

// SplitIndustries splits a comma delimited industry list keeping its order.
func SplitIndustries(industries string) []string {
	return strings.Split(industries, ",")
}
