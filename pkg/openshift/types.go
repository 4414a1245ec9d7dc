package openshift

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Message is a human readable status line returned with a broker response.
type Message struct {
	Field    string `json:"field,omitempty"     yaml:"field,omitempty"`
	Severity string `json:"severity,omitempty"  yaml:"severity,omitempty"`
	Text     string `json:"text"                yaml:"text"`
	ExitCode int    `json:"exit_code,omitempty" yaml:"exit_code,omitempty"`
}

// Messages is an ordered list of broker messages.
type Messages []Message

// Texts joins the message texts with newlines.
func (m Messages) Texts() string {
	texts := make([]string, 0, len(m))

	for _, msg := range m {
		if msg.Text != "" {
			texts = append(texts, msg.Text)
		}
	}

	return strings.Join(texts, "\n")
}

// ApplicationScale selects whether an application is created scalable.
type ApplicationScale string

// Application scale modes.
const (
	ScaleEnabled  ApplicationScale = "true"
	ScaleDisabled ApplicationScale = "false"
)

// String implements fmt.Stringer.
func (s ApplicationScale) String() string {
	return string(s)
}

// ParseApplicationScale converts the broker's scale flag.
func ParseApplicationScale(value bool) ApplicationScale {
	if value {
		return ScaleEnabled
	}

	return ScaleDisabled
}

// GearProfile is the size of the gears an application runs on.
type GearProfile string

// Gear profiles commonly offered by brokers. The authoritative list comes
// from Domain.AvailableGearProfiles.
const (
	GearProfileSmall  GearProfile = "small"
	GearProfileMedium GearProfile = "medium"
	GearProfileLarge  GearProfile = "large"
)

// String implements fmt.Stringer.
func (g GearProfile) String() string {
	return string(g)
}

// FlexString decodes a JSON string, number or null into a string.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""

		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)

		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}

	*f = FlexString(n.String())

	return nil
}

// Int returns the value as an int, or 0 when it is not numeric.
func (f FlexString) Int() int {
	n, err := strconv.Atoi(string(f))
	if err != nil {
		return 0
	}

	return n
}

// GearComponent is one cartridge component running inside a gear.
type GearComponent struct {
	Name         string     `json:"name"          yaml:"name"`
	InternalPort FlexString `json:"internal_port" yaml:"internal_port"`
	ProxyHost    string     `json:"proxy_host"    yaml:"proxy_host"`
	ProxyPort    FlexString `json:"proxy_port"    yaml:"proxy_port"`
}

// Gear is a server computed runtime container of an application.
type Gear struct {
	UUID       string          `json:"uuid"                   yaml:"uuid"`
	GitURL     string          `json:"git_url,omitempty"      yaml:"git_url,omitempty"`
	Profile    GearProfile     `json:"gear_profile,omitempty" yaml:"gear_profile,omitempty"`
	Components []GearComponent `json:"components"             yaml:"components"`
}

// PublicKey is the algorithm and material of an SSH public key.
type PublicKey struct {
	Type    string
	Content string
}
