package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// IdentityKind is the discriminator stored in users.identity_kind.
type IdentityKind string

const (
	IdentityStudent  IdentityKind = "STUDENT"
	IdentityExternal IdentityKind = "EXTERNAL"
)

// Identity is how a member is recognised by the club: a university
// student number or, for people outside the university, a national id.
// Exactly one of the two exists per user.
type Identity interface {
	Kind() IdentityKind
	Value() string
	isIdentity()
}

// UniversityStudent is identified by a 5 digit student number.
type UniversityStudent struct {
	StudentID string
}

func (UniversityStudent) Kind() IdentityKind { return IdentityStudent }
func (s UniversityStudent) Value() string    { return s.StudentID }
func (UniversityStudent) isIdentity()        {}

// ExternalUser is identified by a 7 character alphanumeric national id.
type ExternalUser struct {
	NationalID string
}

func (ExternalUser) Kind() IdentityKind { return IdentityExternal }
func (e ExternalUser) Value() string    { return e.NationalID }
func (ExternalUser) isIdentity()        {}

var (
	studentIDRe  = regexp.MustCompile(`^[0-9]{5}$`)
	nationalIDRe = regexp.MustCompile(`^[A-Za-z0-9]{7}$`)
)

var (
	ErrIdentityMissing   = errors.New("either student_id or national_id is required")
	ErrIdentityAmbiguous = errors.New("provide student_id or national_id, not both")
)

// NewIdentity builds an Identity from the two optional registration
// inputs. Exactly one must be non-empty.
func NewIdentity(studentID, nationalID string) (Identity, error) {
	studentID = strings.TrimSpace(studentID)
	nationalID = strings.TrimSpace(nationalID)
	switch {
	case studentID != "" && nationalID != "":
		return nil, ErrIdentityAmbiguous
	case studentID != "":
		return ParseIdentity(IdentityStudent, studentID)
	case nationalID != "":
		return ParseIdentity(IdentityExternal, nationalID)
	}
	return nil, ErrIdentityMissing
}

// ParseIdentity validates value for kind. It is also used when loading
// rows so a malformed stored identity surfaces as an error.
func ParseIdentity(kind IdentityKind, value string) (Identity, error) {
	switch kind {
	case IdentityStudent:
		if !studentIDRe.MatchString(value) {
			return nil, fmt.Errorf("student_id must be exactly 5 digits")
		}
		return UniversityStudent{StudentID: value}, nil
	case IdentityExternal:
		if !nationalIDRe.MatchString(value) {
			return nil, fmt.Errorf("national_id must be exactly 7 letters or digits")
		}
		return ExternalUser{NationalID: strings.ToUpper(value)}, nil
	}
	return nil, fmt.Errorf("unknown identity kind %q", kind)
}
