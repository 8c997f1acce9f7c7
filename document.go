package gooey

import (
	"encoding/json"
	"errors"
	"fmt"
)

// CreatureDocument is the persisted form of a creature.
type CreatureDocument struct {
	ID    CreatureID     `json:"id"`
	Pos   [2]float64     `json:"pos"`
	Angle float64        `json:"angle"`
	Scale float64        `json:"scale,omitempty"`
	Group uint           `json:"group,omitempty"`
	Mass  float64        `json:"mass,omitempty"`
	Parts []PartDocument `json:"parts"`
}

// PartDocument is the persisted form of one body part. Kind selects which of
// the remaining fields apply: "bell" uses Animation and ClosedStep, "gooey"
// uses Vertices and Indices.
type PartDocument struct {
	Kind       string             `json:"kind"`
	Name       string             `json:"name,omitempty"`
	Image      string             `json:"image,omitempty"`
	Animation  *AnimationData     `json:"animation,omitempty"`
	ClosedStep string             `json:"closed_step,omitempty"`
	MeshMode   string             `json:"mesh_mode,omitempty"`
	Vertices   []float64          `json:"vertices,omitempty"`
	Indices    []uint16           `json:"indices,omitempty"`
	Tweaks     map[string]float64 `json:"tweaks,omitempty"`
}

// LoadCreatureDocument parses a JSON creature document.
func LoadCreatureDocument(data []byte) (CreatureDocument, error) {
	var doc CreatureDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return CreatureDocument{}, fmt.Errorf("gooey: parse creature document: %w", err)
	}
	return doc, nil
}

// Marshal encodes the document as indented JSON.
func (d CreatureDocument) Marshal() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Spec converts the document into a part spec.
func (p PartDocument) Spec() (PartSpec, error) {
	switch p.Kind {
	case PartBell.String():
		if p.Animation == nil {
			return nil, fmt.Errorf("bell %q has no animation: %w", p.Name, ErrInsufficientData)
		}
		return BellSpec{
			Name:       p.Name,
			Image:      p.Image,
			Animation:  *p.Animation,
			ClosedStep: p.ClosedStep,
			Tweaks:     p.Tweaks,
		}, nil
	case PartGooey.String():
		if p.MeshMode != "" && p.MeshMode != MeshModeTriangleFan {
			return nil, fmt.Errorf("gooey %q mesh mode %q: %w", p.Name, p.MeshMode, ErrInvalidConfiguration)
		}
		return GooeySpec{
			Name:     p.Name,
			Image:    p.Image,
			Vertices: p.Vertices,
			Indices:  p.Indices,
			Tweaks:   p.Tweaks,
		}, nil
	}
	return nil, fmt.Errorf("part kind %q: %w", p.Kind, ErrInvalidConfiguration)
}

// AssembleCreature builds a creature from doc. Parts that fail to build are
// skipped; the partially built creature is returned together with the joined
// part errors, so callers can present a degraded creature rather than none.
// Bells are built before other parts so derived masses see the final
// creature mass.
func AssembleCreature(doc CreatureDocument) (*Creature, error) {
	c := NewCreature(CreatureConfig{
		ID:    doc.ID,
		Pos:   Vec2{X: doc.Pos[0], Y: doc.Pos[1]},
		Angle: doc.Angle,
		Scale: doc.Scale,
		Group: doc.Group,
		Mass:  doc.Mass,
	})

	parts := make([]PartDocument, 0, len(doc.Parts))
	for _, p := range doc.Parts {
		if p.Kind == PartBell.String() {
			parts = append(parts, p)
		}
	}
	for _, p := range doc.Parts {
		if p.Kind != PartBell.String() {
			parts = append(parts, p)
		}
	}

	var errs []error
	for _, p := range parts {
		spec, err := p.Spec()
		if err == nil {
			_, err = BuildPart(c, spec)
		}
		if err != nil {
			Logger().Warn("skipping body part", "creature", doc.ID, "kind", p.Kind, "part", p.Name, "error", err)
			errs = append(errs, err)
		}
	}
	return c, errors.Join(errs...)
}

// Document returns the persisted form of the creature.
func (c *Creature) Document() CreatureDocument {
	pos := c.Pos()
	doc := CreatureDocument{
		ID:    c.id,
		Pos:   [2]float64{pos.X, pos.Y},
		Angle: c.Angle(),
		Scale: c.scale,
		Group: c.group,
		Mass:  c.Mass(),
	}
	for _, part := range c.parts {
		switch p := part.(type) {
		case *Bell:
			anim := p.anim.Data()
			doc.Parts = append(doc.Parts, PartDocument{
				Kind:       PartBell.String(),
				Name:       p.name,
				Image:      p.image,
				Animation:  &anim,
				ClosedStep: p.tweaks.ClosedStep,
				Tweaks:     p.Tweaks(),
			})
		case *GooeyPart:
			doc.Parts = append(doc.Parts, PartDocument{
				Kind:     PartGooey.String(),
				Name:     p.name,
				Image:    p.image,
				MeshMode: MeshModeTriangleFan,
				Vertices: append([]float64(nil), p.authored...),
				Indices:  append([]uint16(nil), p.indices...),
				Tweaks:   p.Tweaks(),
			})
		}
	}
	return doc
}
