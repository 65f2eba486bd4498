package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/campuslink/campuslink-backend/internal/domain"
	"github.com/campuslink/campuslink-backend/internal/handler"
	"github.com/campuslink/campuslink-backend/internal/migration"
	"github.com/campuslink/campuslink-backend/internal/repository"
	"github.com/campuslink/campuslink-backend/internal/routes"
	"github.com/campuslink/campuslink-backend/internal/service"
	"github.com/campuslink/campuslink-backend/pkg/cache"
	"github.com/campuslink/campuslink-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// APISuite exercises the full HTTP stack against SQLite.
// The seeded roster: students alice/bob/carol, faculty prof.han
// (college 1), admin registrar, club 10 with alice and bob approved.
type APISuite struct {
	suite.Suite
	db       *gorm.DB
	router   *gin.Engine
	sweepSvc service.SweepService

	aliceToken string // student, club 10
	carolToken string // student, not in club 10
	profToken  string // faculty
	adminToken string // admin
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	s.Require().NoError(err)
	s.db = db
	s.Require().NoError(migration.Run(db, true))

	jwtManager := jwt.NewManager("integration-test-secret", time.Hour)
	cacheService := cache.NewService(nil)

	channelRepo := repository.NewChannelRepository(db)
	settingsRepo := repository.NewChannelSettingsRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	voteRepo := repository.NewPollVoteRepository(db)
	scheduledRepo := repository.NewScheduledMessageRepository(db)
	rosterRepo := repository.NewRosterRepository(db)

	identitySvc := service.NewIdentityService(rosterRepo)
	channelSvc := service.NewChannelService(channelRepo, settingsRepo, rosterRepo, cacheService)
	messageSvc := service.NewMessageService(messageRepo, channelSvc, channelRepo, voteRepo, rosterRepo)
	pollSvc := service.NewPollService(voteRepo, messageRepo)
	scheduledSvc := service.NewScheduledMessageService(scheduledRepo, channelRepo, channelSvc)
	s.sweepSvc = service.NewSweepService(scheduledRepo, messageRepo, channelRepo, settingsRepo)
	uploadSvc := service.NewUploadService(channelRepo, nil)

	router := gin.New()
	routes.Setup(router,
		handler.NewChannelHandler(channelSvc),
		handler.NewMessageHandler(messageSvc, pollSvc),
		handler.NewScheduledHandler(scheduledSvc),
		handler.NewUploadHandler(uploadSvc),
		handler.NewAdminHandler(s.sweepSvc),
		jwtManager,
		identitySvc,
	)
	s.router = router

	s.aliceToken = s.token(jwtManager, "alice", "student", "Alice Kim")
	s.carolToken = s.token(jwtManager, "carol", "student", "Carol Park")
	s.profToken = s.token(jwtManager, "prof.han", "staff", "Prof. Han")
	s.adminToken = s.token(jwtManager, "registrar", "staff", "Registrar")
}

func (s *APISuite) token(m *jwt.Manager, userID, kind, name string) string {
	token, err := m.GenerateToken(userID, kind, name)
	s.Require().NoError(err)
	return token
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *APISuite) request(method, path, token string, body interface{}) (*httptest.ResponseRecorder, *envelope) {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	env := &envelope{}
	if w.Body.Len() > 0 {
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), env))
	}
	return w, env
}

func (s *APISuite) createClubChannel() *domain.Channel {
	w, env := s.request(http.MethodPost, "/api/v1/channels", s.profToken, gin.H{
		"type": "club", "name": "Chess Club", "club_id": 10,
	})
	s.Require().Equal(http.StatusCreated, w.Code)

	var ch domain.Channel
	s.Require().NoError(json.Unmarshal(env.Data, &ch))
	return &ch
}

func (s *APISuite) TestAuthRequired() {
	w, _ := s.request(http.MethodGet, "/api/v1/channels", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	w, _ = s.request(http.MethodGet, "/api/v1/channels", "not-a-token", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *APISuite) TestUnknownCallerForbidden() {
	manager := jwt.NewManager("integration-test-secret", time.Hour)
	ghost := s.token(manager, "ghost", "student", "Ghost")

	w, _ := s.request(http.MethodGet, "/api/v1/channels", ghost, nil)
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *APISuite) TestStudentCannotCreateChannel() {
	w, _ := s.request(http.MethodPost, "/api/v1/channels", s.aliceToken, gin.H{
		"type": "club", "name": "Rogue Club", "club_id": 99,
	})
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *APISuite) TestClubChannelVisibility() {
	ch := s.createClubChannel()

	// Approved club member sees the channel without an explicit join
	w, env := s.request(http.MethodGet, "/api/v1/channels", s.aliceToken, nil)
	s.Equal(http.StatusOK, w.Code)
	var channels []domain.Channel
	s.Require().NoError(json.Unmarshal(env.Data, &channels))
	s.Require().Len(s.idsOf(channels), 1)
	s.Equal(ch.ID, channels[0].ID)

	// A pending member sees nothing
	w, env = s.request(http.MethodGet, "/api/v1/channels", s.carolToken, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Require().NoError(json.Unmarshal(env.Data, &channels))
	s.Empty(channels)

	// Admin sees every active channel
	w, env = s.request(http.MethodGet, "/api/v1/channels", s.adminToken, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Require().NoError(json.Unmarshal(env.Data, &channels))
	s.Len(channels, 1)

	// Club lookup resolves to the same channel
	w, env = s.request(http.MethodGet, "/api/v1/channels/club/10", s.aliceToken, nil)
	s.Equal(http.StatusOK, w.Code)
	var byClub domain.Channel
	s.Require().NoError(json.Unmarshal(env.Data, &byClub))
	s.Equal(ch.ID, byClub.ID)
}

func (s *APISuite) idsOf(channels []domain.Channel) []uint64 {
	ids := make([]uint64, len(channels))
	for i, ch := range channels {
		ids[i] = ch.ID
	}
	return ids
}

func (s *APISuite) TestMessageRoundTrip() {
	ch := s.createClubChannel()
	base := fmt.Sprintf("/api/v1/channels/%d/messages", ch.ID)

	w, env := s.request(http.MethodPost, base, s.aliceToken, gin.H{"body": "hello club"})
	s.Require().Equal(http.StatusCreated, w.Code)
	var posted domain.MessageResponse
	s.Require().NoError(json.Unmarshal(env.Data, &posted))
	s.True(posted.IsOwn)
	s.True(posted.CanEdit)

	// A fresh own text message can be edited
	w, _ = s.request(http.MethodPut, fmt.Sprintf("/api/v1/messages/%d", posted.ID), s.aliceToken,
		gin.H{"body": "hello club, edited"})
	s.Equal(http.StatusOK, w.Code)

	// Someone else cannot
	w, _ = s.request(http.MethodPut, fmt.Sprintf("/api/v1/messages/%d", posted.ID), s.carolToken,
		gin.H{"body": "hijacked"})
	s.Equal(http.StatusForbidden, w.Code)

	w, env = s.request(http.MethodGet, base, s.aliceToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var page []domain.MessageResponse
	s.Require().NoError(json.Unmarshal(env.Data, &page))
	s.Require().Len(page, 1)
	s.Equal("hello club, edited", page[0].Body)
	s.Equal("Alice Kim", page[0].SenderName)
	s.NotNil(page[0].EditedAt)
}

func (s *APISuite) TestPollVoteFlow() {
	ch := s.createClubChannel()
	base := fmt.Sprintf("/api/v1/channels/%d/messages", ch.ID)

	// A poll request without options becomes a Yes/No poll
	w, env := s.request(http.MethodPost, base, s.profToken, gin.H{
		"body": "Pizza friday?", "is_poll": true,
	})
	s.Require().Equal(http.StatusCreated, w.Code)
	var poll domain.MessageResponse
	s.Require().NoError(json.Unmarshal(env.Data, &poll))
	s.Equal(domain.KindPoll, poll.Kind)

	votePath := fmt.Sprintf("/api/v1/messages/%d/vote", poll.ID)

	// Legacy yes label lands on option 0
	w, _ = s.request(http.MethodPost, votePath, s.aliceToken, gin.H{"vote": "yes"})
	s.Equal(http.StatusCreated, w.Code)

	// Voting twice conflicts, regardless of the chosen option
	w, env = s.request(http.MethodPost, votePath, s.aliceToken, gin.H{"option_index": 1})
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("CONFLICT", env.Error.Code)

	// Another voter with an explicit index
	w, _ = s.request(http.MethodPost, votePath, s.carolToken, gin.H{"option_index": 1})
	s.Equal(http.StatusCreated, w.Code)

	// The list shows tallies and the caller's own vote
	w, env = s.request(http.MethodGet, base, s.aliceToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var page []domain.MessageResponse
	s.Require().NoError(json.Unmarshal(env.Data, &page))
	s.Require().Len(page, 1)
	s.Require().NotNil(page[0].Poll)
	s.Equal(1, page[0].Poll.Options[0].Count)
	s.Equal(1, page[0].Poll.Options[1].Count)
	s.Require().NotNil(page[0].Poll.MyVote)
	s.Equal(0, *page[0].Poll.MyVote)
	s.Equal("yes", page[0].Poll.MyLegacyVote)
	// Voter names are not revealed to a rank-and-file voter
	s.Empty(page[0].Poll.Options[0].Voters)

	// The poster sees who voted
	w, env = s.request(http.MethodGet, base, s.profToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Require().NoError(json.Unmarshal(env.Data, &page))
	s.Equal([]string{"Alice Kim"}, page[0].Poll.Options[0].Voters)
}

func (s *APISuite) TestPollEditResetsVotes() {
	ch := s.createClubChannel()
	base := fmt.Sprintf("/api/v1/channels/%d/messages", ch.ID)

	w, env := s.request(http.MethodPost, base, s.profToken, gin.H{
		"body": "Field trip destination", "is_poll": true,
		"poll_options": []string{"Museum", "Aquarium"},
	})
	s.Require().Equal(http.StatusCreated, w.Code)
	var poll domain.MessageResponse
	s.Require().NoError(json.Unmarshal(env.Data, &poll))

	votePath := fmt.Sprintf("/api/v1/messages/%d/vote", poll.ID)
	w, _ = s.request(http.MethodPost, votePath, s.aliceToken, gin.H{"option_index": 0})
	s.Require().Equal(http.StatusCreated, w.Code)

	// Replacing the options wipes tallies and votes
	w, _ = s.request(http.MethodPut, fmt.Sprintf("/api/v1/messages/%d/poll", poll.ID), s.profToken,
		gin.H{"options": []string{"Museum", "Aquarium", "Planetarium"}})
	s.Equal(http.StatusOK, w.Code)

	w, env = s.request(http.MethodGet, base, s.aliceToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var page []domain.MessageResponse
	s.Require().NoError(json.Unmarshal(env.Data, &page))
	s.Require().Len(page[0].Poll.Options, 3)
	s.Equal(0, page[0].Poll.Options[0].Count)
	s.Nil(page[0].Poll.MyVote)

	// The earlier voter gets a fresh vote on the new list
	w, _ = s.request(http.MethodPost, votePath, s.aliceToken, gin.H{"option_index": 2})
	s.Equal(http.StatusCreated, w.Code)
}

func (s *APISuite) TestModerationAndDeletion() {
	ch := s.createClubChannel()
	base := fmt.Sprintf("/api/v1/channels/%d/messages", ch.ID)

	w, env := s.request(http.MethodPost, base, s.aliceToken, gin.H{"body": "spoilers ahead"})
	s.Require().Equal(http.StatusCreated, w.Code)
	var msg domain.MessageResponse
	s.Require().NoError(json.Unmarshal(env.Data, &msg))

	// Students cannot moderate
	hidePath := fmt.Sprintf("/api/v1/messages/%d/hide", msg.ID)
	w, _ = s.request(http.MethodPut, hidePath, s.carolToken, gin.H{"hidden": true})
	s.Equal(http.StatusForbidden, w.Code)

	// Faculty can
	w, _ = s.request(http.MethodPut, hidePath, s.profToken, gin.H{"hidden": true})
	s.Equal(http.StatusOK, w.Code)

	w, env = s.request(http.MethodGet, base, s.aliceToken, nil)
	var page []domain.MessageResponse
	s.Require().NoError(json.Unmarshal(env.Data, &page))
	s.True(page[0].IsHidden)

	// Staff deletion marks the row and attributes the deleter
	w, _ = s.request(http.MethodDelete, fmt.Sprintf("/api/v1/messages/%d", msg.ID), s.profToken, nil)
	s.Equal(http.StatusOK, w.Code)

	w, env = s.request(http.MethodGet, base, s.aliceToken, nil)
	s.Require().NoError(json.Unmarshal(env.Data, &page))
	s.True(page[0].IsDeleted)
	s.Equal("Prof. Han", page[0].DeletedByName)

	// Deleted is terminal: no edit, no second delete
	w, _ = s.request(http.MethodPut, fmt.Sprintf("/api/v1/messages/%d", msg.ID), s.aliceToken,
		gin.H{"body": "undo?"})
	s.Equal(http.StatusNotFound, w.Code)
	w, _ = s.request(http.MethodDelete, fmt.Sprintf("/api/v1/messages/%d", msg.ID), s.aliceToken, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *APISuite) TestChannelSettings() {
	ch := s.createClubChannel()
	path := fmt.Sprintf("/api/v1/channels/%d/settings", ch.ID)

	// Defaults apply before any write
	w, env := s.request(http.MethodGet, path, s.aliceToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var settings domain.ChannelSettings
	s.Require().NoError(json.Unmarshal(env.Data, &settings))
	s.True(settings.StudentsCanSend)
	s.Equal(domain.DefaultRetentionDays, settings.AutoDeleteAfterDays)

	// Out-of-range retention clamps to the default
	w, env = s.request(http.MethodPut, path, s.profToken, gin.H{
		"students_can_send": false, "auto_delete_after_days": 90,
	})
	s.Require().Equal(http.StatusOK, w.Code)
	s.Require().NoError(json.Unmarshal(env.Data, &settings))
	s.False(settings.StudentsCanSend)
	s.Equal(domain.DefaultRetentionDays, settings.AutoDeleteAfterDays)

	// The policy now blocks student posts but not staff posts
	base := fmt.Sprintf("/api/v1/channels/%d/messages", ch.ID)
	w, _ = s.request(http.MethodPost, base, s.aliceToken, gin.H{"body": "am I muted?"})
	s.Equal(http.StatusForbidden, w.Code)
	w, _ = s.request(http.MethodPost, base, s.profToken, gin.H{"body": "staff still speak"})
	s.Equal(http.StatusCreated, w.Code)

	// Students cannot change the policy
	w, _ = s.request(http.MethodPut, path, s.aliceToken, gin.H{"students_can_send": true})
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *APISuite) TestScheduledDispatch() {
	ch := s.createClubChannel()
	schedPath := fmt.Sprintf("/api/v1/channels/%d/scheduled", ch.ID)

	w, env := s.request(http.MethodPost, schedPath, s.profToken, gin.H{
		"body":         "exam reminder",
		"scheduled_at": time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	s.Require().Equal(http.StatusCreated, w.Code)
	var scheduled domain.ScheduledMessage
	s.Require().NoError(json.Unmarshal(env.Data, &scheduled))
	s.Equal(domain.SchedulePending, scheduled.Status)

	// Past times are rejected
	w, _ = s.request(http.MethodPost, schedPath, s.profToken, gin.H{
		"body":         "yesterday",
		"scheduled_at": time.Now().Add(-time.Hour).Format(time.RFC3339),
	})
	s.Equal(http.StatusBadRequest, w.Code)

	// Nothing is dispatched before the due time
	processed, err := s.sweepSvc.DispatchDue(time.Now())
	s.Require().NoError(err)
	s.Equal(0, processed)

	// After the due time the row is materialized exactly once
	later := time.Now().Add(2 * time.Hour)
	processed, err = s.sweepSvc.DispatchDue(later)
	s.Require().NoError(err)
	s.Equal(1, processed)

	processed, err = s.sweepSvc.DispatchDue(later)
	s.Require().NoError(err)
	s.Equal(0, processed)

	base := fmt.Sprintf("/api/v1/channels/%d/messages", ch.ID)
	w, env = s.request(http.MethodGet, base, s.aliceToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var page []domain.MessageResponse
	s.Require().NoError(json.Unmarshal(env.Data, &page))
	s.Require().Len(page, 1)
	s.Equal("exam reminder", page[0].Body)
	s.Equal("Prof. Han", page[0].SenderName)
}

func (s *APISuite) TestAdminSweepEndpoints() {
	// Faculty lacks the admin capability
	w, _ := s.request(http.MethodPost, "/api/v1/admin/sweeps/dispatch", s.profToken, nil)
	s.Equal(http.StatusForbidden, w.Code)

	w, env := s.request(http.MethodPost, "/api/v1/admin/sweeps/dispatch", s.adminToken, nil)
	s.Equal(http.StatusOK, w.Code)
	var result map[string]interface{}
	s.Require().NoError(json.Unmarshal(env.Data, &result))
	s.Contains(result, "dispatched")

	w, _ = s.request(http.MethodPost, "/api/v1/admin/sweeps/retention", s.adminToken, nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *APISuite) TestRetentionSweepPurgesOldMessages() {
	ch := s.createClubChannel()
	base := fmt.Sprintf("/api/v1/channels/%d/messages", ch.ID)

	w, env := s.request(http.MethodPost, base, s.aliceToken, gin.H{"body": "ancient"})
	s.Require().Equal(http.StatusCreated, w.Code)
	var old domain.MessageResponse
	s.Require().NoError(json.Unmarshal(env.Data, &old))

	w, _ = s.request(http.MethodPost, base, s.aliceToken, gin.H{"body": "recent"})
	s.Require().Equal(http.StatusCreated, w.Code)

	// Age the first message beyond the default retention window
	s.Require().NoError(s.db.Model(&domain.Message{}).
		Where("id = ?", old.ID).
		Update("created_at", time.Now().AddDate(0, 0, -40)).Error)

	purged, err := s.sweepSvc.SweepExpired(time.Now())
	s.Require().NoError(err)
	s.Equal(int64(1), purged[ch.ID])

	w, env = s.request(http.MethodGet, base, s.aliceToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var page []domain.MessageResponse
	s.Require().NoError(json.Unmarshal(env.Data, &page))
	s.Require().Len(page, 1)
	s.Equal("recent", page[0].Body)
}

func (s *APISuite) TestChannelDeactivationHidesEverything() {
	ch := s.createClubChannel()
	base := fmt.Sprintf("/api/v1/channels/%d/messages", ch.ID)

	w, _ := s.request(http.MethodPost, base, s.aliceToken, gin.H{"body": "last words"})
	s.Require().Equal(http.StatusCreated, w.Code)

	w, _ = s.request(http.MethodDelete, fmt.Sprintf("/api/v1/channels/%d", ch.ID), s.profToken, nil)
	s.Equal(http.StatusOK, w.Code)

	// The channel and its messages are gone from caller-facing reads
	w, _ = s.request(http.MethodGet, base, s.aliceToken, nil)
	s.Equal(http.StatusNotFound, w.Code)
	w, _ = s.request(http.MethodPost, base, s.aliceToken, gin.H{"body": "anyone?"})
	s.Equal(http.StatusNotFound, w.Code)

	var env *envelope
	w, env = s.request(http.MethodGet, "/api/v1/channels", s.aliceToken, nil)
	s.Equal(http.StatusOK, w.Code)
	var channels []domain.Channel
	s.Require().NoError(json.Unmarshal(env.Data, &channels))
	s.Empty(channels)
}
