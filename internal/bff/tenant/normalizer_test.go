package tenant

import (
	"context"
	"errors"
	"testing"

	"schoolbff/internal/bff/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const tenantUUID = "3f2b8c1e-9d4a-4c1b-8e2f-1a2b3c4d5e6f"

type MockDomainLookup struct {
	mock.Mock
}

func (m *MockDomainLookup) LookupTenantByDomain(ctx context.Context, creds model.Credentials, domain string) (string, error) {
	args := m.Called(ctx, creds, domain)
	return args.String(0), args.Error(1)
}

func TestNormalize(t *testing.T) {
	ctx := context.Background()
	creds := model.Credentials{AccessToken: "tok"}

	t.Run("canonical uuid is returned without a lookup", func(t *testing.T) {
		lookup := new(MockDomainLookup)
		n := NewNormalizer(lookup)

		id, err := n.Normalize(ctx, tenantUUID, creds)
		require.NoError(t, err)
		assert.Equal(t, tenantUUID, id)
		lookup.AssertNotCalled(t, "LookupTenantByDomain", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("slug is resolved through the upstream", func(t *testing.T) {
		lookup := new(MockDomainLookup)
		lookup.On("LookupTenantByDomain", ctx, mock.Anything, "north.school.test").Return(tenantUUID, nil).Once()
		n := NewNormalizer(lookup)

		id, err := n.Normalize(ctx, "north.school.test", creds)
		require.NoError(t, err)
		assert.Equal(t, tenantUUID, id)
		lookup.AssertExpectations(t)
	})

	t.Run("normalizing twice is the same as once", func(t *testing.T) {
		lookup := new(MockDomainLookup)
		lookup.On("LookupTenantByDomain", ctx, mock.Anything, "north").Return(tenantUUID, nil).Once()
		n := NewNormalizer(lookup)

		once, err := n.Normalize(ctx, "north", creds)
		require.NoError(t, err)
		twice, err := n.Normalize(ctx, once, creds)
		require.NoError(t, err)
		assert.Equal(t, once, twice)
		lookup.AssertNumberOfCalls(t, "LookupTenantByDomain", 1)
	})

	t.Run("unknown slug is unresolved", func(t *testing.T) {
		lookup := new(MockDomainLookup)
		lookup.On("LookupTenantByDomain", ctx, mock.Anything, "ghost").Return("", nil)
		n := NewNormalizer(lookup)

		_, err := n.Normalize(ctx, "ghost", creds)
		assert.ErrorIs(t, err, model.ErrTenantUnresolved)
	})

	t.Run("non-uuid id from upstream is unresolved", func(t *testing.T) {
		lookup := new(MockDomainLookup)
		lookup.On("LookupTenantByDomain", ctx, mock.Anything, "north").Return("42", nil)
		n := NewNormalizer(lookup)

		_, err := n.Normalize(ctx, "north", creds)
		assert.ErrorIs(t, err, model.ErrTenantUnresolved)
	})

	t.Run("upstream failure is unresolved", func(t *testing.T) {
		lookup := new(MockDomainLookup)
		lookup.On("LookupTenantByDomain", ctx, mock.Anything, "north").Return("", errors.New("boom"))
		n := NewNormalizer(lookup)

		_, err := n.Normalize(ctx, "north", creds)
		assert.ErrorIs(t, err, model.ErrTenantUnresolved)
	})

	t.Run("credentials keep their token", func(t *testing.T) {
		lookup := new(MockDomainLookup)
		lookup.On("LookupTenantByDomain", ctx, mock.Anything, "north").Return(tenantUUID, nil)
		n := NewNormalizer(lookup)

		out, err := n.NormalizeCredentials(ctx, model.Credentials{TenantID: "north", AccessToken: "tok"})
		require.NoError(t, err)
		assert.Equal(t, model.Credentials{TenantID: tenantUUID, AccessToken: "tok"}, out)
	})
}
