package raid_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/shuffleraid/raid-api/internal/engine"
	"github.com/shuffleraid/raid-api/internal/errors"
	"github.com/shuffleraid/raid-api/internal/orchestrators/raid"
	"github.com/shuffleraid/raid-api/internal/pkg/clock"
	"github.com/shuffleraid/raid-api/internal/pkg/roller"
	raidsession "github.com/shuffleraid/raid-api/internal/repositories/raid_session"
	raidsessionmock "github.com/shuffleraid/raid-api/internal/repositories/raid_session/mock"
	"github.com/shuffleraid/raid-api/internal/testutils"
)

type OrchestratorMockSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	mockRepo *raidsessionmock.MockRepository
	service  raid.Service
	ctx      context.Context
}

func (s *OrchestratorMockSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockRepo = raidsessionmock.NewMockRepository(s.ctrl)
	s.ctx = context.Background()

	eng, err := engine.New(&engine.Config{Roller: roller.NewSeeded(11)})
	s.Require().NoError(err)

	s.service, err = raid.NewOrchestrator(&raid.Config{
		SessionRepo: s.mockRepo,
		Engine:      eng,
		Feed:        &stubFeed{},
		CodeGen:     &stubCodes{codes: []string{testutils.Code}},
		Clock:       clock.NewFixed(testutils.FixtureTime),
	})
	s.Require().NoError(err)
}

func (s *OrchestratorMockSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *OrchestratorMockSuite) TestGetFailurePropagates() {
	s.mockRepo.EXPECT().
		Get(s.ctx, raidsession.GetInput{Code: testutils.Code}).
		Return(nil, errors.Internal("redis unreachable"))

	_, err := s.service.SetReady(s.ctx, &raid.SetReadyInput{
		Code: testutils.Code, UID: testutils.HostUID, Ready: true,
	})
	s.Require().Error(err)
	s.Equal(errors.CodeInternal, errors.GetCode(err))
}

func (s *OrchestratorMockSuite) TestStaleApplyPropagatesAborted() {
	session := testutils.LobbySession(s.T())
	s.mockRepo.EXPECT().
		Get(s.ctx, raidsession.GetInput{Code: testutils.Code}).
		Return(&raidsession.GetOutput{Session: session}, nil)
	s.mockRepo.EXPECT().
		Apply(s.ctx, gomock.Any()).
		Return(nil, errors.Abortedf("session %s version changed", testutils.Code))

	_, err := s.service.SetReady(s.ctx, &raid.SetReadyInput{
		Code: testutils.Code, UID: testutils.HostUID, Ready: false,
	})
	s.Require().Error(err)
	s.True(errors.IsAborted(err), "losers of a concurrent write see Aborted")
}

func (s *OrchestratorMockSuite) TestApplyCarriesExpectedVersion() {
	session := testutils.LobbySession(s.T())
	session.Version = 7

	s.mockRepo.EXPECT().
		Get(s.ctx, raidsession.GetInput{Code: testutils.Code}).
		Return(&raidsession.GetOutput{Session: session}, nil)
	s.mockRepo.EXPECT().
		Apply(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input raidsession.ApplyInput) (*raidsession.ApplyOutput, error) {
			s.Equal(int64(7), input.ExpectedVersion)
			return &raidsession.ApplyOutput{Version: 8}, nil
		})

	out, err := s.service.SetReady(s.ctx, &raid.SetReadyInput{
		Code: testutils.Code, UID: testutils.HostUID, Ready: false,
	})
	s.Require().NoError(err)
	s.Equal(int64(8), out.Session.Version)
}

func (s *OrchestratorMockSuite) TestCreateGivesUpAfterRepeatedCollisions() {
	s.mockRepo.EXPECT().
		Create(s.ctx, gomock.Any()).
		Return(nil, errors.AlreadyExists("code taken")).
		Times(5)

	_, err := s.service.CreateSession(s.ctx, &raid.CreateSessionInput{
		HostUID: testutils.HostUID, HostName: "Alice", ClassName: "Warrior",
	})
	s.Require().Error(err)
}

func TestOrchestratorMockSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorMockSuite))
}
