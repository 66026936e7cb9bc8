package services

import (
	"testing"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_LastAdminCannotBeDeleted(t *testing.T) {
	env := newTestEnv(t)
	admin := env.fx.User(models.RoleAdmin)

	err := env.services.User().Delete(env.ctx, admin.ID, admin.ID)
	require.Error(t, err)
	assert.True(t, IsBusinessRule(err))

	second := env.fx.User(models.RoleAdmin)
	require.NoError(t, env.services.User().Delete(env.ctx, second.ID, admin.ID))

	_, err = env.services.User().GetByID(env.ctx, second.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_LastAdminCannotBeDemoted(t *testing.T) {
	env := newTestEnv(t)
	admin := env.fx.User(models.RoleAdmin)
	role := models.RoleTeacher

	_, err := env.services.User().Update(env.ctx, admin.ID, &UpdateUserRequest{Role: &role}, admin.ID)
	require.Error(t, err)
	assert.True(t, IsBusinessRule(err))
}

func TestUserService_CreateAndFilter(t *testing.T) {
	env := newTestEnv(t)
	admin := env.fx.User(models.RoleAdmin)
	env.fx.User(models.RoleStudent)

	created, err := env.services.User().Create(env.ctx, &CreateUserRequest{
		Name:     "Profesora Ruiz",
		Email:    "Ruiz@Example.com",
		Password: "Secreto123",
		Role:     models.RoleTeacher,
	}, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "ruiz@example.com", created.Email)
	assert.Equal(t, []string{"teacher"}, created.Roles)

	_, err = env.services.User().Create(env.ctx, &CreateUserRequest{
		Name:     "Copia",
		Email:    "ruiz@example.com",
		Password: "Secreto123",
		Role:     models.RoleStudent,
	}, admin.ID)
	assert.True(t, IsValidation(err))

	teacherRole := models.RoleTeacher
	page, err := env.services.User().List(env.ctx, repositories.UserFilters{Role: &teacherRole})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Data, 1)
	assert.Equal(t, created.ID, page.Data[0].ID)
}

func TestUserService_ChangePassword(t *testing.T) {
	env := newTestEnv(t)
	resp := registerStudent(t, env, "pw@example.com")
	users := env.services.User()

	err := users.ChangePassword(env.ctx, resp.User.ID, &ChangePasswordRequest{
		CurrentPassword:      "Equivocada1",
		NewPassword:          "NuevoSecreto9",
		PasswordConfirmation: "NuevoSecreto9",
	})
	assert.ErrorIs(t, err, ErrWrongPassword)

	err = users.ChangePassword(env.ctx, resp.User.ID, &ChangePasswordRequest{
		CurrentPassword:      "Secreto123",
		NewPassword:          "NuevoSecreto9",
		PasswordConfirmation: "NoCoincide9",
	})
	assert.True(t, IsValidation(err))

	require.NoError(t, users.ChangePassword(env.ctx, resp.User.ID, &ChangePasswordRequest{
		CurrentPassword:      "Secreto123",
		NewPassword:          "NuevoSecreto9",
		PasswordConfirmation: "NuevoSecreto9",
	}))

	_, err = env.services.Auth().Login(env.ctx, &LoginRequest{Email: "pw@example.com", Password: "NuevoSecreto9"})
	assert.NoError(t, err)
}

func TestUserService_UpdateProfileEmailTaken(t *testing.T) {
	env := newTestEnv(t)
	first := env.fx.User(models.RoleStudent)
	second := env.fx.User(models.RoleStudent)

	_, err := env.services.User().UpdateProfile(env.ctx, second.ID, &UpdateProfileRequest{
		Name:  "Segundo",
		Email: first.Email,
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	updated, err := env.services.User().UpdateProfile(env.ctx, second.ID, &UpdateProfileRequest{
		Name:  "Segundo",
		Email: second.Email,
	})
	require.NoError(t, err)
	assert.Equal(t, "Segundo", updated.Name)
}
