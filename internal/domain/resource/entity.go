// Package resource describes learning resources served by the API.
package resource

import "time"

// Identity identifies a stored resource.
type Identity struct {
	ID int `json:"id" path:"id"`
}

// Value is a learning resource as submitted by a client.
//
// Length limits follow the columns of the resource table.
type Value struct {
	Title             string `json:"title" required:"true" minLength:"1" maxLength:"255"`
	Content           string `json:"content" required:"true" minLength:"1"`
	ResourceType      string `json:"resource_type" required:"true" minLength:"1" maxLength:"50" example:"article"`
	DifficultyLevel   *int   `json:"difficulty_level" description:"Optional, higher is harder."`
	IsSample          bool   `json:"is_sample"`
	HasVisualAids     bool   `json:"has_visual_aids"`
	HasAudio          bool   `json:"has_audio"`
	HasSimplifiedText bool   `json:"has_simplified_text"`
}

// Entity is a stored resource.
//
// CreatedAt is kept by repositories and is not part of API responses.
type Entity struct {
	Identity
	Value
	CreatedAt time.Time `json:"-"`
}
