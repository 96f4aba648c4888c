package models

type ComponentID struct {
	ID       string `json:"id" yaml:"id"`
	FamilyID string `json:"familyId" yaml:"familyId" validate:"required"`
	Family   string `json:"family,omitempty" yaml:"family,omitempty"`
	Plugin   string `json:"plugin,omitempty" yaml:"plugin,omitempty"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
}

type IconFamily struct {
	Icon           string `json:"icon" yaml:"icon"`
	CustomIcon     []byte `json:"customIcon,omitempty" yaml:"customIcon,omitempty"`
	CustomIconType string `json:"customIconType,omitempty" yaml:"customIconType,omitempty"`
}

type ComponentIndex struct {
	ID          ComponentID `json:"id" yaml:"id"`
	DisplayName string      `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	IconFamily  IconFamily  `json:"iconFamily" yaml:"iconFamily"`
	Version     int         `json:"version,omitempty" yaml:"version,omitempty"`
}

// ComponentIndices is the ordered component index. Several components may
// share a family; lookups are first-match in slice order.
type ComponentIndices struct {
	Components []ComponentIndex `json:"components" yaml:"components" validate:"dive"`
}
