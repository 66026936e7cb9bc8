package services

import (
	"testing"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageService_SendAndMarkRead(t *testing.T) {
	env := newTestEnv(t)
	sender := env.fx.User(models.RoleStudent)
	recipient := env.fx.User(models.RoleTeacher)
	messages := env.services.Message()

	msg, err := messages.Send(env.ctx, sender.ID, &SendMessageRequest{
		RecipientID: recipient.ID,
		Subject:     "Duda",
		Body:        "¿Cuándo es el examen?",
	})
	require.NoError(t, err)
	assert.Equal(t, models.MessageSent, msg.Status)
	assert.Equal(t, models.MessageGeneral, msg.Type)
	assert.Nil(t, msg.ReadAt)

	_, err = messages.MarkRead(env.ctx, sender.ID, msg.ID)
	assert.True(t, IsForbidden(err), "only the recipient can mark a message as read")

	read, err := messages.MarkRead(env.ctx, recipient.ID, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MessageRead, read.Status)
	require.NotNil(t, read.ReadAt)

	again, err := messages.MarkRead(env.ctx, recipient.ID, msg.ID)
	require.NoError(t, err)
	assert.True(t, read.ReadAt.Equal(*again.ReadAt))
}

func TestMessageService_Permissions(t *testing.T) {
	env := newTestEnv(t)
	sender := env.fx.User(models.RoleStudent)
	recipient := env.fx.User(models.RoleTeacher)
	stranger := env.fx.User(models.RoleStudent)
	messages := env.services.Message()

	msg, err := messages.Send(env.ctx, sender.ID, &SendMessageRequest{
		RecipientID: recipient.ID,
		Subject:     "Hola",
		Body:        "Mensaje",
	})
	require.NoError(t, err)

	_, err = messages.Show(env.ctx, stranger.ID, msg.ID)
	assert.True(t, IsForbidden(err))

	_, err = messages.Show(env.ctx, recipient.ID, msg.ID)
	assert.NoError(t, err)

	subject := "Editado"
	_, err = messages.Update(env.ctx, recipient.ID, msg.ID, &UpdateMessageRequest{Subject: &subject})
	assert.True(t, IsForbidden(err))

	updated, err := messages.Update(env.ctx, sender.ID, msg.ID, &UpdateMessageRequest{Subject: &subject})
	require.NoError(t, err)
	assert.Equal(t, "Editado", updated.Subject)

	assert.True(t, IsForbidden(messages.Delete(env.ctx, recipient.ID, msg.ID)))
	require.NoError(t, messages.Delete(env.ctx, sender.ID, msg.ID))

	_, err = messages.Show(env.ctx, sender.ID, msg.ID)
	assert.ErrorIs(t, err, ErrMessageNotFound)
}

func TestMessageService_UnknownRecipient(t *testing.T) {
	env := newTestEnv(t)
	sender := env.fx.User(models.RoleStudent)

	_, err := env.services.Message().Send(env.ctx, sender.ID, &SendMessageRequest{
		RecipientID: 4242,
		Subject:     "Hola",
		Body:        "Mensaje",
	})
	assert.True(t, IsValidation(err))
}

func TestMessageService_Boxes(t *testing.T) {
	env := newTestEnv(t)
	a := env.fx.User(models.RoleStudent)
	b := env.fx.User(models.RoleTeacher)
	messages := env.services.Message()

	for i := 0; i < 2; i++ {
		_, err := messages.Send(env.ctx, a.ID, &SendMessageRequest{RecipientID: b.ID, Subject: "Ida", Body: "x"})
		require.NoError(t, err)
	}
	_, err := messages.Send(env.ctx, b.ID, &SendMessageRequest{RecipientID: a.ID, Subject: "Vuelta", Body: "y"})
	require.NoError(t, err)

	all, err := messages.Inbox(env.ctx, a.ID, "", 1, 15)
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Total)

	sent, err := messages.Inbox(env.ctx, a.ID, repositories.MessageBoxSent, 1, 15)
	require.NoError(t, err)
	assert.Equal(t, int64(2), sent.Total)

	received, err := messages.Inbox(env.ctx, a.ID, repositories.MessageBoxReceived, 1, 15)
	require.NoError(t, err)
	assert.Equal(t, int64(1), received.Total)

	_, err = messages.Inbox(env.ctx, a.ID, repositories.MessageBox("papelera"), 1, 15)
	assert.True(t, IsValidation(err))
}
