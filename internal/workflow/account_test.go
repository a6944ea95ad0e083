package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mebe/internal/domain"
	"mebe/internal/store"
)

const avatarBase = "https://avatars.test/"

func TestRegisterValidation(t *testing.T) {
	wf, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		userName string
		phone    string
		password string
		confirm  string
		wantMsg  string
	}{
		{"empty name", "  ", "0911111111", "secret1", "secret1", "Vui lòng nhập họ và tên"},
		{"bad phone", "Lan", "12345", "secret1", "secret1", "Số điện thoại không hợp lệ"},
		{"landline prefix", "Lan", "0211111111", "secret1", "secret1", "Số điện thoại không hợp lệ"},
		{"short password", "Lan", "0911111111", "abc", "abc", "Mật khẩu phải có ít nhất 6 ký tự"},
		{"confirm mismatch", "Lan", "0911111111", "secret1", "secret2", "Mật khẩu xác nhận không khớp"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := wf.Register(ctx, tc.userName, tc.phone, tc.password, tc.confirm, avatarBase)
			require.Error(t, err)
			assert.True(t, IsValidation(err))
			assert.Equal(t, tc.wantMsg, err.Error())
		})
	}
}

func TestRegisterAndLogin(t *testing.T) {
	wf, st := newTestService(t)
	ctx := context.Background()

	user, err := wf.Register(ctx, "  Lan  ", "0911111111", "secret1", "secret1", avatarBase)
	require.NoError(t, err)
	assert.Equal(t, "Lan", user.Name)
	assert.Equal(t, int64(0), user.Balance)
	assert.Equal(t, avatarBase+"0911111111", user.Avatar)
	assert.NotEqual(t, "secret1", user.Password) // stored as a hash

	// Welcome notification
	notifs, err := st.ListNotifications(ctx, "0911111111")
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, "Chào mừng mẹ đến với Mẹ & Bé", notifs[0].Title)
	assert.Equal(t, domain.NotifInfo, notifs[0].Type)

	got, err := wf.Login(ctx, "0911111111", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Lan", got.Name)

	_, err = wf.Login(ctx, "0911111111", "wrong")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = wf.Login(ctx, "0999999999", "secret1")
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestRegisterDuplicatePhone(t *testing.T) {
	wf, _ := newTestService(t)
	ctx := context.Background()

	_, err := wf.Register(ctx, "Lan", "0911111111", "secret1", "secret1", avatarBase)
	require.NoError(t, err)

	_, err = wf.Register(ctx, "Mai", "0911111111", "secret2", "secret2", avatarBase)
	assert.True(t, errors.Is(err, store.ErrDuplicateKey))
}

func TestAddBank(t *testing.T) {
	wf, st := newTestService(t)
	ctx := context.Background()

	user, err := wf.Register(ctx, "Lan", "0911111111", "secret1", "secret1", avatarBase)
	require.NoError(t, err)

	user, err = wf.AddBank(ctx, user, " Vietcombank ", " 001122334455 ")
	require.NoError(t, err)
	require.Len(t, user.Banks, 1)
	assert.Equal(t, "Vietcombank", user.Banks[0].BankName)
	assert.Equal(t, "001122334455", user.Banks[0].AccountNumber)
	assert.Equal(t, "LAN", user.Banks[0].AccountHolder)
	assert.Equal(t, 0, user.Banks[0].Position)

	user, err = wf.AddBank(ctx, user, "ACB", "999")
	require.NoError(t, err)
	assert.Equal(t, 1, user.Banks[1].Position)

	stored, err := st.GetUser(ctx, "0911111111")
	require.NoError(t, err)
	assert.Len(t, stored.Banks, 2)

	_, err = wf.AddBank(ctx, user, "", "123")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestChangePassword(t *testing.T) {
	wf, _ := newTestService(t)
	ctx := context.Background()

	user, err := wf.Register(ctx, "Lan", "0911111111", "secret1", "secret1", avatarBase)
	require.NoError(t, err)

	err = wf.ChangePassword(ctx, user, "wrong", "newsecret", "newsecret")
	require.Error(t, err)
	assert.Equal(t, "Mật khẩu hiện tại không đúng", err.Error())

	err = wf.ChangePassword(ctx, user, "secret1", "newsecret", "newsecret")
	require.NoError(t, err)

	_, err = wf.Login(ctx, "0911111111", "newsecret")
	assert.NoError(t, err)
	_, err = wf.Login(ctx, "0911111111", "secret1")
	assert.ErrorIs(t, err, ErrBadCredentials)
}
