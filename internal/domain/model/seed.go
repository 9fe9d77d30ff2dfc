package model

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// DecodeProfiles reads profiles from YAML or JSON. The document may be a
// bare list or a mapping with a "profiles" list.
func DecodeProfiles(r io.Reader) ([]Profile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse profiles: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	var profiles []Profile
	switch root.Kind {
	case yaml.SequenceNode:
		err = root.Decode(&profiles)
	case yaml.MappingNode:
		var wrapped struct {
			Profiles []Profile `yaml:"profiles"`
		}
		err = root.Decode(&wrapped)
		profiles = wrapped.Profiles
	default:
		return nil, errors.New("parse profiles: expected a list or a profiles mapping")
	}
	if err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	return profiles, nil
}

// DecodeProfile reads a single profile from YAML or JSON.
func DecodeProfile(r io.Reader) (Profile, error) {
	var p Profile
	if err := yaml.NewDecoder(r).Decode(&p); err != nil {
		return Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	return p, nil
}
