package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/thanhnp/degreechain/internal/hashing"
)

// TxKind distinguishes the genesis record from degree issuances
type TxKind string

const (
	KindSystem         TxKind = "system"
	KindDegreeIssuance TxKind = "degree_issuance"
)

// DefaultIssuer is recorded when a submission does not name one
const DefaultIssuer = "University Registrar"

// Transaction is one issuance event (or the genesis marker). It is a value:
// nothing mutates it after construction.
type Transaction struct {
	ID             string    `json:"transaction_id"`
	Kind           TxKind    `json:"transaction_type"`
	StudentID      string    `json:"student_nim"`
	StudentName    string    `json:"student_name"`
	Degree         string    `json:"degree"`
	Major          string    `json:"major"`
	GPA            string    `json:"gpa"`
	GraduationDate string    `json:"graduation_date"`
	DocumentHash   string    `json:"document_hash"`
	Issuer         string    `json:"issuer"`
	Timestamp      time.Time `json:"timestamp"`
}

// Hash recomputes the integrity hash over every semantic field. The
// transaction id is not part of it.
func (t Transaction) Hash() string {
	var sb strings.Builder
	sb.WriteString(string(t.Kind))
	sb.WriteString(t.StudentID)
	sb.WriteString(t.StudentName)
	sb.WriteString(t.Degree)
	sb.WriteString(t.Major)
	sb.WriteString(t.GPA)
	sb.WriteString(t.GraduationDate)
	sb.WriteString(t.DocumentHash)
	sb.WriteString(t.Issuer)
	sb.WriteString(FormatTime(t.Timestamp))
	return hashing.Sum(sb.String())
}

// IsDegree reports whether t records a degree issuance
func (t Transaction) IsDegree() bool {
	return t.Kind == KindDegreeIssuance
}

// DegreeData is the caller-supplied input for one issuance. Field names
// follow the bulk import file layout.
type DegreeData struct {
	StudentID      string `json:"nim" yaml:"nim"`
	Name           string `json:"name" yaml:"name"`
	Degree         string `json:"degree" yaml:"degree"`
	Major          string `json:"major" yaml:"major"`
	GPA            GPA    `json:"gpa" yaml:"gpa"`
	GraduationDate string `json:"graduation_date" yaml:"graduation_date"`
	Issuer         string `json:"issuer,omitempty" yaml:"issuer,omitempty"`
}

// DocumentHash is the externally re-derivable fingerprint of the degree
// fields: id, name, degree, major, gpa and graduation date, concatenated.
func (d DegreeData) DocumentHash() string {
	return hashing.Sum(d.StudentID + d.Name + d.Degree + d.Major + string(d.GPA) + d.GraduationDate)
}

// GPA keeps the grade exactly as submitted. JSON and YAML input may carry
// it as a string or as a number; numbers keep their literal text.
type GPA string

func (g *GPA) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*g = GPA(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("gpa must be a string or a number: %w", err)
	}
	*g = GPA(n.String())
	return nil
}

func (g *GPA) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("gpa must be a string or a number, line %d", value.Line)
	}
	*g = GPA(value.Value)
	return nil
}

// FormatTime is the canonical timestamp encoding used inside hashes
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// Now returns the current time in the form stored on transactions and
// blocks: UTC without a monotonic reading, so it survives a JSON round trip
// unchanged.
func Now() time.Time {
	return time.Now().UTC().Round(0)
}
