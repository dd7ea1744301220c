package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation marks a job rejected before any remote call.
var ErrValidation = errors.New("validation failed")

func requireField(value, name string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrValidation, name)
	}
	return nil
}

// ObjectReference identifies one object on one wellbore, optionally on a named server.
type ObjectReference struct {
	WellUid      string `json:"wellUid"`
	WellboreUid  string `json:"wellboreUid"`
	Uid          string `json:"uid"`
	WellName     string `json:"wellName,omitempty"`
	WellboreName string `json:"wellboreName,omitempty"`
	Name         string `json:"name,omitempty"`
	ServerUrl    string `json:"serverUrl,omitempty"`
}

// Verify checks that all identity fields are present.
func (r ObjectReference) Verify() error {
	if err := requireField(r.WellUid, "WellUid"); err != nil {
		return err
	}
	if err := requireField(r.WellboreUid, "WellboreUid"); err != nil {
		return err
	}
	return requireField(r.Uid, "Uid")
}

func (r ObjectReference) String() string {
	return fmt.Sprintf("WellUid: %s, WellboreUid: %s, Uid: %s", r.WellUid, r.WellboreUid, r.Uid)
}

// ObjectReferences identifies several objects sharing one parent wellbore.
type ObjectReferences struct {
	WellUid      string   `json:"wellUid"`
	WellboreUid  string   `json:"wellboreUid"`
	ObjectUids   []string `json:"objectUids"`
	WellName     string   `json:"wellName,omitempty"`
	WellboreName string   `json:"wellboreName,omitempty"`
	ServerUrl    string   `json:"serverUrl,omitempty"`
}

// Verify checks the parent identity and that at least one non-empty uid is named.
func (r ObjectReferences) Verify() error {
	if err := requireField(r.WellUid, "WellUid"); err != nil {
		return err
	}
	if err := requireField(r.WellboreUid, "WellboreUid"); err != nil {
		return err
	}
	if len(r.ObjectUids) == 0 {
		return fmt.Errorf("%w: ObjectUids cannot be empty", ErrValidation)
	}
	for _, uid := range r.ObjectUids {
		if err := requireField(uid, "ObjectUid"); err != nil {
			return err
		}
	}
	return nil
}

// Object returns the reference of the i-th object.
func (r ObjectReferences) Object(i int) ObjectReference {
	return ObjectReference{
		WellUid:      r.WellUid,
		WellboreUid:  r.WellboreUid,
		Uid:          r.ObjectUids[i],
		WellName:     r.WellName,
		WellboreName: r.WellboreName,
		ServerUrl:    r.ServerUrl,
	}
}

// WellboreReference identifies a wellbore.
type WellboreReference struct {
	WellUid      string `json:"wellUid"`
	WellboreUid  string `json:"wellboreUid"`
	WellName     string `json:"wellName,omitempty"`
	WellboreName string `json:"wellboreName,omitempty"`
}

// Verify checks that both uids are present.
func (r WellboreReference) Verify() error {
	if err := requireField(r.WellUid, "WellUid"); err != nil {
		return err
	}
	return requireField(r.WellboreUid, "WellboreUid")
}

// ComponentType tags the kind of sub-object a ComponentReferences names.
type ComponentType string

const ComponentTypeMnemonic ComponentType = "mnemonic"

// ComponentReferences names sub-objects (curves) of one parent object.
type ComponentReferences struct {
	Parent        ObjectReference `json:"parent"`
	ComponentType ComponentType   `json:"componentType"`
	ComponentUids []string        `json:"componentUids"`
	ServerUrl     string          `json:"serverUrl,omitempty"`
}

// Verify checks the parent reference and component names.
func (r ComponentReferences) Verify() error {
	if err := r.Parent.Verify(); err != nil {
		return err
	}
	for _, uid := range r.ComponentUids {
		if err := requireField(uid, "ComponentUid"); err != nil {
			return err
		}
	}
	return nil
}
