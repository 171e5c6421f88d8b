// internal/models/profile.go
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Profile attribute names. These are also the wire keys.
const (
	FieldRegion         = "region"
	FieldAgeGroup       = "age_group"
	FieldAge            = "age"
	FieldBusinessStatus = "business_status"
	FieldBusinessType   = "business_type"
	FieldEmployment     = "employment"
	FieldIncomeLevel    = "income_level"
	FieldIncome         = "income"
	FieldSupportPurpose = "support_purpose"
	FieldTaxStatus      = "tax_status"
	FieldMaritalStatus  = "marital_status"
)

var profileFields = []string{
	FieldRegion,
	FieldAgeGroup,
	FieldAge,
	FieldBusinessStatus,
	FieldBusinessType,
	FieldEmployment,
	FieldIncomeLevel,
	FieldIncome,
	FieldSupportPurpose,
	FieldTaxStatus,
	FieldMaritalStatus,
}

// RequiredFields drive the completion score.
var RequiredFields = []string{FieldRegion, FieldBusinessStatus, FieldSupportPurpose}

// UserProfile is the applicant record built up over a conversation.
// A nil field means the attribute is not known yet. Keys outside the
// closed attribute set are kept in Extra.
type UserProfile struct {
	Region         *string
	AgeGroup       *string
	Age            *int
	BusinessStatus *string
	BusinessType   *string
	Employment     *string
	IncomeLevel    *string
	Income         *int
	SupportPurpose *string
	TaxStatus      *string
	MaritalStatus  *string

	Extra map[string]interface{}
}

// ProfileFields returns the closed attribute set in declaration order.
func ProfileFields() []string {
	out := make([]string, len(profileFields))
	copy(out, profileFields)
	return out
}

// IsKnownField reports whether name belongs to the closed attribute set.
func IsKnownField(name string) bool {
	for _, f := range profileFields {
		if f == name {
			return true
		}
	}
	return false
}

func StringPtr(v string) *string { return &v }

func IntPtr(v int) *int { return &v }

func (p *UserProfile) stringField(name string) **string {
	switch name {
	case FieldRegion:
		return &p.Region
	case FieldAgeGroup:
		return &p.AgeGroup
	case FieldBusinessStatus:
		return &p.BusinessStatus
	case FieldBusinessType:
		return &p.BusinessType
	case FieldEmployment:
		return &p.Employment
	case FieldIncomeLevel:
		return &p.IncomeLevel
	case FieldSupportPurpose:
		return &p.SupportPurpose
	case FieldTaxStatus:
		return &p.TaxStatus
	case FieldMaritalStatus:
		return &p.MaritalStatus
	}
	return nil
}

func (p *UserProfile) intField(name string) **int {
	switch name {
	case FieldAge:
		return &p.Age
	case FieldIncome:
		return &p.Income
	}
	return nil
}

// Get returns the value of a known attribute or an extra key.
func (p UserProfile) Get(name string) (interface{}, bool) {
	if sp := p.stringField(name); sp != nil {
		if *sp == nil {
			return nil, false
		}
		return **sp, true
	}
	if ip := p.intField(name); ip != nil {
		if *ip == nil {
			return nil, false
		}
		return **ip, true
	}
	v, ok := p.Extra[name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Has reports whether the attribute holds a non-null value.
func (p UserProfile) Has(name string) bool {
	_, ok := p.Get(name)
	return ok
}

// Set assigns a value by attribute name. Unknown names go to Extra.
// A nil value leaves the profile untouched.
func (p *UserProfile) Set(name string, value interface{}) error {
	if value == nil {
		return nil
	}
	if sp := p.stringField(name); sp != nil {
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("field %s: expected string, got %T", name, value)
		}
		*sp = &s
		return nil
	}
	if ip := p.intField(name); ip != nil {
		n, err := toInt(value)
		if err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		*ip = &n
		return nil
	}
	if p.Extra == nil {
		p.Extra = make(map[string]interface{})
	}
	p.Extra[name] = value
	return nil
}

func toInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("expected integer, got %v", v)
		}
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("expected integer, got %q", v.String())
		}
		return int(n), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("expected integer, got %q", v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", value)
	}
}

// Merge applies update on top of p and returns the result. Non-null
// values in update win; null values never clear an existing one.
func (p UserProfile) Merge(update UserProfile) UserProfile {
	merged := p.Clone()
	for _, name := range profileFields {
		if v, ok := update.Get(name); ok {
			_ = merged.Set(name, v)
		}
	}
	for k, v := range update.Extra {
		if v == nil {
			continue
		}
		if merged.Extra == nil {
			merged.Extra = make(map[string]interface{})
		}
		merged.Extra[k] = v
	}
	return merged
}

// Clone returns a copy that shares no mutable state with p.
func (p UserProfile) Clone() UserProfile {
	c := p
	if p.Extra != nil {
		c.Extra = make(map[string]interface{}, len(p.Extra))
		for k, v := range p.Extra {
			c.Extra[k] = v
		}
	}
	return c
}

// IsEmpty reports whether nothing is known about the applicant.
func (p UserProfile) IsEmpty() bool {
	return len(p.FieldNames()) == 0
}

// FieldNames lists the set attributes, known fields first in
// declaration order.
func (p UserProfile) FieldNames() []string {
	var names []string
	for _, name := range profileFields {
		if p.Has(name) {
			names = append(names, name)
		}
	}
	for k, v := range p.Extra {
		if v != nil {
			names = append(names, k)
		}
	}
	return names
}

// CompletionScore is the share of required fields that are set.
func (p UserProfile) CompletionScore() float64 {
	filled := 0
	for _, name := range RequiredFields {
		if p.Has(name) {
			filled++
		}
	}
	return float64(filled) / float64(len(RequiredFields))
}

// ToMap flattens the profile into its wire representation.
func (p UserProfile) ToMap() map[string]interface{} {
	out := make(map[string]interface{}, len(profileFields)+len(p.Extra))
	for k, v := range p.Extra {
		if v != nil {
			out[k] = v
		}
	}
	for _, name := range profileFields {
		if v, ok := p.Get(name); ok {
			out[name] = v
		}
	}
	return out
}

// ProfileFromMap builds a profile from a loosely typed document.
// Wrong-typed known attributes are treated as absent.
func ProfileFromMap(m map[string]interface{}) UserProfile {
	var p UserProfile
	for k, v := range m {
		if v == nil {
			continue
		}
		if err := p.Set(k, v); err != nil {
			continue
		}
	}
	return p
}

func (p UserProfile) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ToMap())
}

func (p *UserProfile) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = UserProfile{}
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*p = ProfileFromMap(raw)
	return nil
}
