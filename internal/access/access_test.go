package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"revista/backend/internal/domain/auth"
)

func TestAuthorize(t *testing.T) {
	reader := &auth.Claims{UserID: 3, Role: auth.RoleReader}
	editor := &auth.Claims{UserID: 2, Role: auth.RoleEditor}
	admin := &auth.Claims{UserID: 1, Role: auth.RoleAdmin}

	tests := []struct {
		name    string
		claims  *auth.Claims
		allowed []auth.Role
		wantErr error
	}{
		{name: "missing claims", claims: nil, allowed: Editors, wantErr: auth.ErrUnauthenticated},
		{name: "missing claims on open route", claims: nil, allowed: Anyone, wantErr: auth.ErrUnauthenticated},
		{name: "reader on editor route", claims: reader, allowed: Editors, wantErr: auth.ErrForbidden},
		{name: "editor on editor route", claims: editor, allowed: Editors},
		{name: "editor on admin route", claims: editor, allowed: Admins, wantErr: auth.ErrForbidden},
		{name: "admin on admin route", claims: admin, allowed: Admins},
		{name: "reader on open route", claims: reader, allowed: Anyone},
		{name: "unknown role", claims: &auth.Claims{Role: "owner"}, allowed: Editors, wantErr: auth.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.claims, tt.allowed...)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNoRoleHierarchy(t *testing.T) {
	admin := &auth.Claims{Role: auth.RoleAdmin}
	assert.ErrorIs(t, Authorize(admin, auth.RoleEditor), auth.ErrForbidden)
}

func TestCanModify(t *testing.T) {
	owner := &auth.Claims{UserID: 7, Role: auth.RoleReader}
	other := &auth.Claims{UserID: 8, Role: auth.RoleEditor}
	admin := &auth.Claims{UserID: 9, Role: auth.RoleAdmin}

	assert.True(t, CanModify(owner, 7, auth.RoleAdmin))
	assert.False(t, CanModify(other, 7, auth.RoleAdmin))
	assert.True(t, CanModify(admin, 7, auth.RoleAdmin))
	assert.False(t, CanModify(nil, 7, auth.RoleAdmin))
}
