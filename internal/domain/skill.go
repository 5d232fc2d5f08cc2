package domain

import (
	"time"

	"github.com/google/uuid"
)

type Skill struct {
	ID          uuid.UUID      `json:"id"`
	UserID      uuid.UUID      `json:"userId"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Tags        []string       `json:"tags"`
	Level       string         `json:"level"`
	Seeking     *string        `json:"seeking,omitempty"`
	IsActive    bool           `json:"isActive"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	User        *PublicProfile `json:"user,omitempty"`
}

// SkillFilter - фильтр ленты навыков
type SkillFilter struct {
	Category string
	Search   string
}

const (
	SkillLevelBeginner     = "beginner"
	SkillLevelIntermediate = "intermediate"
	SkillLevelAdvanced     = "advanced"
	SkillLevelExpert       = "expert"
)

func IsValidSkillLevel(level string) bool {
	switch level {
	case SkillLevelBeginner, SkillLevelIntermediate, SkillLevelAdvanced, SkillLevelExpert:
		return true
	}
	return false
}
