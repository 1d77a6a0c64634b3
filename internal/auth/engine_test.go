package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/dishflow/shiftbot/internal/ledger"
	"github.com/dishflow/shiftbot/internal/models"
)

type EngineSuite struct {
	suite.Suite
	codes  *ledger.MemoryCodeLedger
	redis  *miniredis.Miniredis
	cache  *RedisRoleCache
	engine *Engine
	ctx    context.Context
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.codes = ledger.NewMemoryCodeLedger(
		models.ActivationCode{
			Code:   "STAFF-KASSIR-001",
			Role:   models.RoleCashier,
			Status: models.CodeStatusUnused,
			Place:  "Казан Шаверма",
		},
		models.ActivationCode{
			Code:       "BAR-BARMEN-007",
			Role:       models.RoleBartender,
			PersonName: "Пётр Иванов",
			IdentityID: 99,
			Status:     models.CodeStatusActivated,
			Place:      "Казан Шаверма",
		},
		models.ActivationCode{
			Code:   "STAFF-BROKEN-002",
			Role:   models.ParseRole("курьер"),
			Status: models.CodeStatusUnused,
			Place:  "Казан Шаверма",
		},
	)

	s.redis = miniredis.RunT(s.T())
	client := redis.NewClient(&redis.Options{Addr: s.redis.Addr()})
	s.cache = NewRedisRoleCache(client, time.Hour)

	s.engine = NewEngine(s.codes, s.cache, time.Second)
	s.ctx = context.Background()
}

func (s *EngineSuite) TestActivateSucceeds() {
	a, err := s.engine.Activate(s.ctx, "STAFF-KASSIR-001", 42, "Иван Петров")
	s.Require().NoError(err)

	s.Equal(models.RoleCashier, a.Role)
	s.Equal(int64(42), a.IdentityID)
	s.Equal("Иван Петров", a.PersonName)
	s.Equal("Казан Шаверма", a.Place)

	code, err := s.codes.FindByCode(s.ctx, "STAFF-KASSIR-001")
	s.Require().NoError(err)
	s.Equal(int64(42), code.IdentityID)
	s.Equal(models.CodeStatusActivated, code.Status)
	s.Equal("Иван Петров", code.PersonName)
}

func (s *EngineSuite) TestActivateNormalizesToken() {
	a, err := s.engine.Activate(s.ctx, "  staff-kassir-001  ", 42, "Иван Петров")
	s.Require().NoError(err)
	s.Equal(models.RoleCashier, a.Role)
}

func (s *EngineSuite) TestActivateUnknownCode() {
	_, err := s.engine.Activate(s.ctx, "STAFF-NONE-999", 42, "Иван Петров")
	s.ErrorIs(err, ErrCodeNotFound)
}

// Код, привязанный к identity 99, не достаётся identity 7 — и строка
// в леджере остаётся нетронутой.
func (s *EngineSuite) TestActivateBoundCodeRejected() {
	_, err := s.engine.Activate(s.ctx, "BAR-BARMEN-007", 7, "Самозванец")
	s.ErrorIs(err, ErrCodeAlreadyBound)

	code, findErr := s.codes.FindByCode(s.ctx, "BAR-BARMEN-007")
	s.Require().NoError(findErr)
	s.Equal(int64(99), code.IdentityID)
	s.Equal("Пётр Иванов", code.PersonName)
}

func (s *EngineSuite) TestActivateInvalidRole() {
	_, err := s.engine.Activate(s.ctx, "STAFF-BROKEN-002", 42, "Иван Петров")
	s.ErrorIs(err, ErrInvalidRole)

	code, findErr := s.codes.FindByCode(s.ctx, "STAFF-BROKEN-002")
	s.Require().NoError(findErr)
	s.Equal(int64(0), code.IdentityID)
}

// Повторная активация тем же identity идемпотентна.
func (s *EngineSuite) TestReactivationIdempotent() {
	first, err := s.engine.Activate(s.ctx, "STAFF-KASSIR-001", 42, "Иван Петров")
	s.Require().NoError(err)

	second, err := s.engine.Activate(s.ctx, "STAFF-KASSIR-001", 42, "Иван Петров")
	s.Require().NoError(err)
	s.Equal(first, second)
}

func (s *EngineSuite) TestResolveUnknownIdentity() {
	_, err := s.engine.ResolveIdentity(s.ctx, 12345)
	s.ErrorIs(err, ErrNotAuthorized)
}

func (s *EngineSuite) TestResolveAfterActivation() {
	_, err := s.engine.Activate(s.ctx, "STAFF-KASSIR-001", 42, "Иван Петров")
	s.Require().NoError(err)

	a, err := s.engine.ResolveIdentity(s.ctx, 42)
	s.Require().NoError(err)
	s.Equal(models.RoleCashier, a.Role)
	s.Equal("Иван Петров", a.PersonName)
}

func (s *EngineSuite) TestResolveFromLedgerWithoutCache() {
	engine := NewEngine(s.codes, nil, time.Second)
	a, err := engine.ResolveIdentity(s.ctx, 99)
	s.Require().NoError(err)
	s.Equal(models.RoleBartender, a.Role)
	s.Equal("Пётр Иванов", a.PersonName)
}

// Кэш отдаёт назначение без похода в леджер.
func (s *EngineSuite) TestResolveHitsCache() {
	want := &models.RoleAssignment{
		IdentityID: 42,
		Role:       models.RoleGrill,
		Place:      "Казан Шаверма",
		PersonName: "Кэшированный",
	}
	s.cache.Set(s.ctx, want)

	a, err := s.engine.ResolveIdentity(s.ctx, 42)
	s.Require().NoError(err)
	s.Equal(want, a)
}

func (s *EngineSuite) TestCacheExpires() {
	want := &models.RoleAssignment{IdentityID: 42, Role: models.RoleGrill}
	s.cache.Set(s.ctx, want)

	s.redis.FastForward(2 * time.Hour)

	_, ok := s.cache.Get(s.ctx, 42)
	s.False(ok)
}
