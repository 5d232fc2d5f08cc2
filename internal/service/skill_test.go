package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skill_swap/internal/domain"
	apperrors "skill_swap/pkg/errors"
)

func TestSkillLifecycle(t *testing.T) {
	services, store, _ := newTestServices(t)
	ctx := context.Background()
	alice := store.AddUser("Alice", "A")
	bob := store.AddUser("Bob", "B")

	skill, err := services.Skill.Create(ctx, alice.ID, SkillInput{
		Title:    " Go programming ",
		Category: "tech",
		Tags:     []string{"go", " ", "backend"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Go programming", skill.Title)
	assert.Equal(t, domain.SkillLevelBeginner, skill.Level)
	assert.Equal(t, []string{"go", "backend"}, skill.Tags)

	_, err = services.Skill.Create(ctx, bob.ID, SkillInput{Title: "Pottery", Category: "art", Level: "advanced"})
	require.NoError(t, err)

	tech, err := services.Skill.List(ctx, domain.SkillFilter{Category: "tech"})
	require.NoError(t, err)
	require.Len(t, tech, 1)
	require.NotNil(t, tech[0].User)
	assert.Equal(t, "Alice", tech[0].User.FirstName)

	found, err := services.Skill.List(ctx, domain.SkillFilter{Search: "POTT"})
	require.NoError(t, err)
	require.Len(t, found, 1)

	_, err = services.Skill.Update(ctx, skill.ID, bob.ID, SkillInput{Title: "Hijack", Category: "tech"})
	assert.ErrorIs(t, err, apperrors.ErrNotOwner)

	updated, err := services.Skill.Update(ctx, skill.ID, alice.ID, SkillInput{Title: "Go", Category: "tech", Level: "Expert"})
	require.NoError(t, err)
	assert.Equal(t, domain.SkillLevelExpert, updated.Level)

	assert.ErrorIs(t, services.Skill.Delete(ctx, skill.ID, bob.ID), apperrors.ErrForbidden)
	require.NoError(t, services.Skill.Delete(ctx, skill.ID, alice.ID))

	mine, err := services.Skill.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)

	assert.ErrorIs(t, services.Skill.Delete(ctx, skill.ID, alice.ID), apperrors.ErrSkillNotFound)
}

func TestSkillValidation(t *testing.T) {
	services, store, _ := newTestServices(t)
	alice := store.AddUser("Alice", "A")

	cases := map[string]SkillInput{
		"empty title":   {Category: "tech"},
		"no category":   {Title: "Go"},
		"unknown level": {Title: "Go", Category: "tech", Level: "guru"},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := services.Skill.Create(context.Background(), alice.ID, input)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}
