package zia

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// NoneName is the name of the fallback group and department.
const NoneName = "None"

// Group represents a user group. Group entries embedded in a User usually
// carry only ID and Name.
type Group struct {
	ID       int    `json:"id" mapstructure:"id"`
	Name     string `json:"name" mapstructure:"name"`
	IdpID    int    `json:"idpId,omitempty" mapstructure:"idpId"`
	Comments string `json:"comments,omitempty" mapstructure:"comments"`

	// Extra holds fields not explicitly modeled.
	Extra map[string]any `json:"-" mapstructure:",remain"`
}

// Same reports whether two groups are the same {id, name} pair.
func (g Group) Same(other Group) bool {
	return g.ID == other.ID && g.Name == other.Name
}

// MarshalJSON implements json.Marshaler.
func (g Group) MarshalJSON() ([]byte, error) {
	type plain Group
	return encodeRecord(plain(g), g.Extra)
}

// UnmarshalJSON implements json.Unmarshaler.
func (g *Group) UnmarshalJSON(data []byte) error {
	return decodeRecord(data, g)
}

// Department represents a user department.
type Department struct {
	ID       int    `json:"id" mapstructure:"id"`
	Name     string `json:"name" mapstructure:"name"`
	IdpID    int    `json:"idpId,omitempty" mapstructure:"idpId"`
	Comments string `json:"comments,omitempty" mapstructure:"comments"`
	Deleted  bool   `json:"deleted,omitempty" mapstructure:"deleted"`

	Extra map[string]any `json:"-" mapstructure:",remain"`
}

// MarshalJSON implements json.Marshaler.
func (d Department) MarshalJSON() ([]byte, error) {
	type plain Department
	return encodeRecord(plain(d), d.Extra)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Department) UnmarshalJSON(data []byte) error {
	return decodeRecord(data, d)
}

// User represents a ZIA user. Email is the principal name.
type User struct {
	ID            int         `json:"id,omitempty" mapstructure:"id"`
	Name          string      `json:"name" mapstructure:"name"`
	Email         string      `json:"email" mapstructure:"email"`
	Groups        []Group     `json:"groups,omitempty" mapstructure:"groups"`
	Department    *Department `json:"department,omitempty" mapstructure:"department"`
	Comments      string      `json:"comments,omitempty" mapstructure:"comments"`
	TempAuthEmail string      `json:"tempAuthEmail,omitempty" mapstructure:"tempAuthEmail"`
	Password      string      `json:"password,omitempty" mapstructure:"password"`
	AdminUser     bool        `json:"adminUser" mapstructure:"adminUser"`
	Type          string      `json:"type,omitempty" mapstructure:"type"`
	Deleted       bool        `json:"deleted,omitempty" mapstructure:"deleted"`

	// Extra holds fields not explicitly modeled so that a fetched user can
	// be sent back unchanged.
	Extra map[string]any `json:"-" mapstructure:",remain"`
}

// Matches reports whether the user's email equals principal, ignoring case.
func (u *User) Matches(principal string) bool {
	return strings.EqualFold(u.Email, principal)
}

// HasGroup reports whether the user is a member of g.
func (u *User) HasGroup(g Group) bool {
	for _, m := range u.Groups {
		if m.Same(g) {
			return true
		}
	}
	return false
}

// MarshalJSON implements json.Marshaler.
func (u User) MarshalJSON() ([]byte, error) {
	type plain User
	return encodeRecord(plain(u), u.Extra)
}

// UnmarshalJSON implements json.Unmarshaler.
func (u *User) UnmarshalJSON(data []byte) error {
	return decodeRecord(data, u)
}

// Location represents a ZIA location or sub-location.
type Location struct {
	ID                 int      `json:"id,omitempty" mapstructure:"id"`
	Name               string   `json:"name" mapstructure:"name"`
	ParentID           int      `json:"parentId,omitempty" mapstructure:"parentId"`
	UpBandwidth        int      `json:"upBandwidth,omitempty" mapstructure:"upBandwidth"`
	DnBandwidth        int      `json:"dnBandwidth,omitempty" mapstructure:"dnBandwidth"`
	Country            string   `json:"country,omitempty" mapstructure:"country"`
	TZ                 string   `json:"tz,omitempty" mapstructure:"tz"`
	IPAddresses        []string `json:"ipAddresses,omitempty" mapstructure:"ipAddresses"`
	Ports              []int    `json:"ports,omitempty" mapstructure:"ports"`
	AuthRequired       bool     `json:"authRequired" mapstructure:"authRequired"`
	SSLScanEnabled     bool     `json:"sslScanEnabled" mapstructure:"sslScanEnabled"`
	ZappSSLScanEnabled bool     `json:"zappSSLScanEnabled" mapstructure:"zappSSLScanEnabled"`
	XFFForwardEnabled  bool     `json:"xffForwardEnabled" mapstructure:"xffForwardEnabled"`
	SurrogateIP        bool     `json:"surrogateIP" mapstructure:"surrogateIP"`
	IdleTimeInMinutes  int      `json:"idleTimeInMinutes,omitempty" mapstructure:"idleTimeInMinutes"`
	OFWEnabled         bool     `json:"ofwEnabled" mapstructure:"ofwEnabled"`
	IPSControl         bool     `json:"ipsControl" mapstructure:"ipsControl"`
	AUPEnabled         bool     `json:"aupEnabled" mapstructure:"aupEnabled"`
	CautionEnabled     bool     `json:"cautionEnabled" mapstructure:"cautionEnabled"`
	Description        string   `json:"description,omitempty" mapstructure:"description"`

	Extra map[string]any `json:"-" mapstructure:",remain"`
}

// MarshalJSON implements json.Marshaler.
func (l Location) MarshalJSON() ([]byte, error) {
	type plain Location
	return encodeRecord(plain(l), l.Extra)
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *Location) UnmarshalJSON(data []byte) error {
	return decodeRecord(data, l)
}

// LocationLite is the name/ID summary returned by /locations/lite.
type LocationLite struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	ParentID          int    `json:"parentId,omitempty"`
	TZ                string `json:"tz,omitempty"`
	SSLScanEnabled    bool   `json:"sslScanEnabled"`
	XFFForwardEnabled bool   `json:"xffForwardEnabled"`
	OFWEnabled        bool   `json:"ofwEnabled"`
}

// AuthSession is returned by a successful login.
type AuthSession struct {
	AuthType           string `json:"authType"`
	ObfuscateAPIKey    bool   `json:"obfuscateApiKey"`
	PasswordExpiryTime int64  `json:"passwordExpiryTime"`
	PasswordExpiryDays int    `json:"passwordExpiryDays"`
}

// ActivationStatus is the state of pending configuration changes.
type ActivationStatus string

const (
	StatusActive     ActivationStatus = "ACTIVE"
	StatusPending    ActivationStatus = "PENDING"
	StatusInProgress ActivationStatus = "INPROGRESS"
)

// Activation is the body returned by the status endpoints.
type Activation struct {
	Status ActivationStatus `json:"status"`
}

// BulkDeleteResult lists the user IDs the server deleted.
type BulkDeleteResult struct {
	IDs []int `json:"ids"`
}

// UserFilter defines list criteria for users.
type UserFilter struct {
	Name  string
	Dept  string
	Group string
}

// SearchFilter defines list criteria for groups and departments.
type SearchFilter struct {
	Search string
}

// LocationFilter defines list criteria for locations. Nil booleans are not
// sent.
type LocationFilter struct {
	Search         string
	SSLScanEnabled *bool
	XFFEnabled     *bool
	AuthRequired   *bool
	BWEnforced     *bool
}

// LocationLiteFilter defines criteria for the lite location listing.
type LocationLiteFilter struct {
	IncludeSubLocations    *bool
	IncludeParentLocations *bool
	SSLScanEnabled         *bool
	Search                 string
	Page                   int
	PageSize               int
}

// PageOptions selects a page. Pages are 1-based; zero values are not sent.
type PageOptions struct {
	Page     int
	PageSize int
}

// Bool returns a pointer to v, for optional filter fields.
func Bool(v bool) *bool {
	return &v
}

// decodeRecord decodes a JSON object into a record struct, collecting
// unknown members into its ",remain" map. Numbers stay json.Number so that
// large IDs survive a round trip.
func decodeRecord(data []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	md, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result: out,
	})
	if err != nil {
		return err
	}
	return md.Decode(raw)
}

// encodeRecord marshals known fields and merges extra members that do not
// collide with them.
func encodeRecord(known any, extra map[string]any) ([]byte, error) {
	data, err := json.Marshal(known)
	if err != nil || len(extra) == 0 {
		return data, err
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, ok := merged[k]; ok {
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		merged[k] = raw
	}
	return json.Marshal(merged)
}
