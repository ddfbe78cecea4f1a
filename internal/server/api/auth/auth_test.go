package auth_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stubdex/stubdex/internal/server/api/auth"
)

func TestGenKey(t *testing.T) {

	key, err := auth.GenerateKey()
	assert.NoError(t, err)
	assert.Len(t, key, auth.AutoGenKeyLength)
	assert.Regexp(t, "^[0-9A-Za-z]{16}$", key)

}

func BenchmarkGenKey(b *testing.B) {
	var key string
	var err error
	for i := 0; i < b.N; i++ {
		key, err = auth.GenerateKey()
	}
	assert.NoError(b, err)
	assert.Len(b, key, auth.AutoGenKeyLength)
}

func TestDeriveKey(t *testing.T) {

	type testCase struct {
		name        string
		password    string
		expectedKey []byte
		expectedErr error
	}

	testCases := []testCase{
		{
			name:        "Normal Password",
			password:    "password123",
			expectedKey: []byte{0xee, 0x14, 0x22, 0xce, 0xdd, 0x2e, 0x3d, 0x4d, 0x51, 0xf0, 0x28, 0x6b, 0xb9, 0x80, 0xe9, 0x53, 0x68, 0x65, 0xfc, 0xba, 0x87, 0xf, 0x39, 0xbc, 0xe7, 0xf6, 0x99, 0xb3, 0xb, 0x7b, 0xf2, 0x6d},
		},
		{
			name:        "Simple Password",
			password:    "1",
			expectedKey: []byte{0xa5, 0x75, 0x48, 0xe0, 0xf1, 0xa9, 0xfd, 0x66, 0xda, 0x23, 0x4f, 0xe2, 0xef, 0xc0, 0x58, 0x32, 0x85, 0xfa, 0xf3, 0x93, 0x7c, 0x4c, 0x51, 0x6d, 0x31, 0x5a, 0xfa, 0xfe, 0x6, 0x43, 0xff, 0xec},
		},
		{
			name:        "empty password",
			password:    "",
			expectedKey: []byte{},
			expectedErr: errors.New("Password cannot be empty"),
		},
		{
			name:        "long password",
			password:    "dkfghdfg90d78h350ß8dgfjkdfg#---23489dfg!!!@!@#$$%&/()=",
			expectedKey: []byte{0x3f, 0xee, 0x48, 0x7c, 0x37, 0x65, 0x80, 0x3, 0x41, 0xd9, 0xea, 0x46, 0xe0, 0xca, 0xcb, 0xb4, 0x3e, 0x19, 0x60, 0xc4, 0xa1, 0x1b, 0xbd, 0x0, 0xb1, 0x6b, 0xc6, 0xca, 0x32, 0x52, 0xec, 0x32},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			derivedKey, err := auth.DeriveKey(tc.password)
			if tc.expectedErr != nil {
				assert.Equal(t, tc.expectedErr, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expectedKey, derivedKey)
		})
	}
}

func TestDeriveSessionKey(t *testing.T) {
	key := make([]byte, 32)
	serverNonce := make([]byte, 32)
	clientNonce := make([]byte, 32)

	for i := range key {
		key[i] = byte(i)
		serverNonce[i] = byte(i + 10)
		clientNonce[i] = byte(i + 20)
	}

	sessionKey := auth.DeriveSessionKey(key, serverNonce, clientNonce)
	assert.Len(t, sessionKey, 32)

	sessionKey2 := auth.DeriveSessionKey(key, serverNonce, clientNonce)
	assert.Equal(t, sessionKey, sessionKey2)

	clientNonce[0] = 99
	sessionKey3 := auth.DeriveSessionKey(key, serverNonce, clientNonce)
	assert.NotEqual(t, sessionKey, sessionKey3)
}
