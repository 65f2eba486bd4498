package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/campuslink/campuslink-backend/internal/common"
	"github.com/campuslink/campuslink-backend/internal/domain"
	"github.com/campuslink/campuslink-backend/internal/repository"
	"github.com/campuslink/campuslink-backend/pkg/logger"
	"gorm.io/gorm"
)

// DefaultPageSize is both the default and the cap for message pages
const DefaultPageSize = 50

// MessageService business logic for posting, listing and mutating messages
type MessageService interface {
	Post(ctx context.Context, channelID uint64, actor domain.Actor, req *domain.PostMessageRequest) (*domain.MessageResponse, error)
	List(ctx context.Context, channelID uint64, actor domain.Actor, beforeID uint64, limit int) ([]*domain.MessageResponse, error)
	Edit(messageID uint64, actor domain.Actor, req *domain.EditMessageRequest) error
	EditPoll(messageID uint64, actor domain.Actor, req *domain.EditPollRequest) error
	Moderate(messageID uint64, actor domain.Actor, hidden bool) error
	Delete(messageID uint64, actor domain.Actor) error
}

type messageService struct {
	repo        repository.MessageRepository
	channelSvc  ChannelService
	channelRepo repository.ChannelRepository
	voteRepo    repository.PollVoteRepository
	roster      repository.RosterRepository
	now         func() time.Time
}

// NewMessageService creates a new MessageService
func NewMessageService(
	repo repository.MessageRepository,
	channelSvc ChannelService,
	channelRepo repository.ChannelRepository,
	voteRepo repository.PollVoteRepository,
	roster repository.RosterRepository,
) MessageService {
	return &messageService{
		repo:        repo,
		channelSvc:  channelSvc,
		channelRepo: channelRepo,
		voteRepo:    voteRepo,
		roster:      roster,
		now:         time.Now,
	}
}

// Post appends a message to a channel. The channel must be active; a
// student sender additionally needs the channel policy to allow student
// posts. A poll request without usable options becomes a Yes/No poll.
func (s *messageService) Post(ctx context.Context, channelID uint64, actor domain.Actor, req *domain.PostMessageRequest) (*domain.MessageResponse, error) {
	if _, err := s.channelRepo.FindByID(channelID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrChannelNotFound
		}
		return nil, err
	}

	if actor.IsStudent() {
		settings, err := s.channelSvc.GetSettings(ctx, channelID)
		if err != nil {
			return nil, err
		}
		if !settings.StudentsCanSend {
			return nil, common.ErrForbidden
		}
	}

	body := domain.TruncateBody(req.Body)
	if body == "" && req.AttachmentURL == "" {
		return nil, common.ErrInvalidInput
	}
	if len(req.AttachmentURL) > domain.MaxAttachmentURL {
		return nil, common.ErrInvalidInput
	}
	attachmentKind := ""
	if req.AttachmentURL != "" {
		switch domain.AttachmentKind(req.AttachmentKind) {
		case domain.AttachmentImage, domain.AttachmentFile:
			attachmentKind = req.AttachmentKind
		default:
			return nil, common.ErrInvalidInput
		}
	}

	msg := &domain.Message{
		ChannelID:      channelID,
		SenderKind:     actor.SenderKind(),
		Body:           body,
		AttachmentURL:  req.AttachmentURL,
		AttachmentKind: attachmentKind,
		Kind:           domain.KindText,
	}
	if actor.IsStudent() {
		msg.SenderStudentID = &actor.StudentID
	} else {
		msg.SenderStaffID = &actor.StaffID
	}

	if req.IsPoll || len(req.PollOptions) > 0 {
		options := domain.NormalizeOptions(req.PollOptions)
		if len(options) == 0 {
			options = []string{"Yes", "No"}
		}
		if len(options) < domain.MinPollOptions {
			return nil, common.ErrInvalidInput
		}
		if err := msg.SetPoll(options); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(msg); err != nil {
		return nil, err
	}

	resp := s.baseResponse(msg, actor)
	resp.SenderName = actor.Name
	return resp, nil
}

// List returns a page of enriched messages, chronological ascending.
// The cursor walks backwards: rows with id < beforeID, newest first,
// reversed before returning.
func (s *messageService) List(ctx context.Context, channelID uint64, actor domain.Actor, beforeID uint64, limit int) ([]*domain.MessageResponse, error) {
	if _, err := s.channelRepo.FindByID(channelID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrChannelNotFound
		}
		return nil, err
	}

	if limit < 1 || limit > DefaultPageSize {
		limit = DefaultPageSize
	}

	messages, err := s.repo.FindPage(channelID, beforeID, limit)
	if err != nil {
		return nil, err
	}

	// Reverse into ascending display order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return s.enrich(messages, actor)
}

// enrich resolves names, ownership, edit rights and poll views for a page
func (s *messageService) enrich(messages []*domain.Message, actor domain.Actor) ([]*domain.MessageResponse, error) {
	studentIDs, staffIDs := collectIdentityIDs(messages)

	studentNames, err := s.roster.StudentNames(studentIDs)
	if err != nil {
		return nil, err
	}
	staffNames, err := s.roster.StaffNames(staffIDs)
	if err != nil {
		return nil, err
	}

	var pollIDs, revealIDs []uint64
	for _, m := range messages {
		if m.Kind != domain.KindPoll || m.IsDeleted {
			continue
		}
		pollIDs = append(pollIDs, m.ID)
		// Voter identities are revealed to the poll's poster and admins only
		if actor.IsAdmin() || actor.Matches(m.SenderStudentID, m.SenderStaffID) {
			revealIDs = append(revealIDs, m.ID)
		}
	}

	myVotes, err := s.voteRepo.VotesByVoter(pollIDs, actor.Key())
	if err != nil {
		return nil, err
	}

	voterNames, err := s.voterNamesByOption(revealIDs)
	if err != nil {
		return nil, err
	}

	responses := make([]*domain.MessageResponse, 0, len(messages))
	for _, m := range messages {
		resp := s.baseResponse(m, actor)
		resp.SenderName = resolveSenderName(m, studentNames, staffNames)
		if m.IsDeleted {
			resp.DeletedByName = s.resolveKeyName(m.DeletedByKey, studentNames, staffNames)
		}

		if m.Kind == domain.KindPoll && !m.IsDeleted {
			poll, err := buildPollView(m, myVotes[m.ID], voterNames[m.ID])
			if err != nil {
				logger.GetLogger().Error().Err(err).
					Uint64("message_id", m.ID).
					Msg("stored poll payload is malformed")
				return nil, err
			}
			resp.Poll = poll
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// baseResponse maps the stored row plus caller-relative flags
func (s *messageService) baseResponse(m *domain.Message, actor domain.Actor) *domain.MessageResponse {
	now := s.now()
	isOwn := actor.Matches(m.SenderStudentID, m.SenderStaffID)
	return &domain.MessageResponse{
		ID:             m.ID,
		ChannelID:      m.ChannelID,
		SenderKind:     m.SenderKind,
		Body:           m.Body,
		AttachmentURL:  m.AttachmentURL,
		AttachmentKind: m.AttachmentKind,
		Kind:           m.Kind,
		IsOwn:          isOwn,
		CanEdit:        isOwn && m.Kind == domain.KindText && !m.IsDeleted && now.Sub(m.CreatedAt) <= domain.EditWindow,
		CanEditAny:     actor.IsAdmin() && !m.IsDeleted && m.Kind == domain.KindText,
		IsHidden:       m.IsHidden,
		IsDeleted:      m.IsDeleted,
		CreatedAt:      m.CreatedAt,
		EditedAt:       m.EditedAt,
	}
}

// voterNamesByOption loads votes for the given polls and resolves voter
// display names, grouped per message and option, capped per option.
func (s *messageService) voterNamesByOption(messageIDs []uint64) (map[uint64]map[int][]string, error) {
	result := make(map[uint64]map[int][]string)
	if len(messageIDs) == 0 {
		return result, nil
	}

	votes, err := s.voteRepo.FindByMessages(messageIDs)
	if err != nil {
		return nil, err
	}

	var studentIDs, staffIDs []uint64
	for _, v := range votes {
		if v.VoterStudentID != nil {
			studentIDs = append(studentIDs, *v.VoterStudentID)
		}
		if v.VoterStaffID != nil {
			staffIDs = append(staffIDs, *v.VoterStaffID)
		}
	}
	studentNames, err := s.roster.StudentNames(studentIDs)
	if err != nil {
		return nil, err
	}
	staffNames, err := s.roster.StaffNames(staffIDs)
	if err != nil {
		return nil, err
	}

	for _, v := range votes {
		byOption, ok := result[v.MessageID]
		if !ok {
			byOption = make(map[int][]string)
			result[v.MessageID] = byOption
		}
		// The shown list is capped; the count stays exact via the tallies
		if len(byOption[v.OptionIndex]) >= domain.MaxVotersPerValue {
			continue
		}
		name := ""
		if v.VoterStudentID != nil {
			name = studentNames[*v.VoterStudentID]
		} else if v.VoterStaffID != nil {
			name = staffNames[*v.VoterStaffID]
		}
		if name == "" {
			name = "unknown"
		}
		byOption[v.OptionIndex] = append(byOption[v.OptionIndex], name)
	}
	return result, nil
}

// buildPollView decodes the stored option/tally arrays into the API shape
func buildPollView(m *domain.Message, myVote *domain.PollVote, voters map[int][]string) (*domain.PollView, error) {
	options, err := m.Options()
	if err != nil {
		return nil, err
	}
	counts, err := m.Counts()
	if err != nil {
		return nil, err
	}
	if len(options) != len(counts) {
		return nil, errors.New("poll options and counts length mismatch")
	}

	view := &domain.PollView{
		Options: make([]domain.PollOptionView, len(options)),
	}
	for i, text := range options {
		view.Options[i] = domain.PollOptionView{
			Index: i,
			Text:  text,
			Count: counts[i],
		}
		if voters != nil {
			view.Options[i].Voters = voters[i]
		}
	}
	if myVote != nil {
		idx := myVote.OptionIndex
		view.MyVote = &idx
		view.MyLegacyVote = domain.LegacyChoiceFor(len(options), idx)
	}
	return view, nil
}

func collectIdentityIDs(messages []*domain.Message) (studentIDs, staffIDs []uint64) {
	for _, m := range messages {
		if m.SenderStudentID != nil {
			studentIDs = append(studentIDs, *m.SenderStudentID)
		}
		if m.SenderStaffID != nil {
			staffIDs = append(staffIDs, *m.SenderStaffID)
		}
		if m.DeletedByKey != "" {
			if kind, id, ok := parseIdentityKey(m.DeletedByKey); ok {
				if kind == domain.ActorStudent {
					studentIDs = append(studentIDs, id)
				} else {
					staffIDs = append(staffIDs, id)
				}
			}
		}
	}
	return studentIDs, staffIDs
}

func resolveSenderName(m *domain.Message, studentNames, staffNames map[uint64]string) string {
	if m.SenderStudentID != nil {
		return studentNames[*m.SenderStudentID]
	}
	if m.SenderStaffID != nil {
		return staffNames[*m.SenderStaffID]
	}
	return ""
}

func (s *messageService) resolveKeyName(key string, studentNames, staffNames map[uint64]string) string {
	kind, id, ok := parseIdentityKey(key)
	if !ok {
		return ""
	}
	if kind == domain.ActorStudent {
		return studentNames[id]
	}
	return staffNames[id]
}

// parseIdentityKey splits "student:<id>" / "staff:<id>" keys
func parseIdentityKey(key string) (domain.ActorKind, uint64, bool) {
	parts := strings.SplitN(key, ":", 2)
	if len(parts) != 2 {
		return "", 0, false
	}
	id, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return "", 0, false
	}
	switch parts[0] {
	case string(domain.ActorStudent):
		return domain.ActorStudent, id, true
	case string(domain.ActorStaff):
		return domain.ActorStaff, id, true
	}
	return "", 0, false
}

// Edit updates a text message body. Owners get a five-minute window;
// admins may edit any live text message.
func (s *messageService) Edit(messageID uint64, actor domain.Actor, req *domain.EditMessageRequest) error {
	msg, err := s.repo.FindByID(messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrMessageNotFound
		}
		return err
	}
	if msg.IsDeleted {
		return common.ErrMessageNotFound
	}

	now := s.now()
	if !msg.EditableBy(actor, now) {
		// Distinguish "yours but too late" from "not yours at all"
		if actor.Matches(msg.SenderStudentID, msg.SenderStaffID) &&
			msg.Kind == domain.KindText {
			return common.ErrEditWindow
		}
		return common.ErrForbidden
	}

	body := domain.TruncateBody(req.Body)
	if body == "" {
		return common.ErrInvalidInput
	}

	if err := s.repo.UpdateBody(messageID, body, now); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrMessageNotFound
		}
		return err
	}
	return nil
}

// EditPoll updates a poll's question and/or replaces its options.
// Replacing options resets every tally and deletes every vote.
func (s *messageService) EditPoll(messageID uint64, actor domain.Actor, req *domain.EditPollRequest) error {
	msg, err := s.repo.FindByID(messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrMessageNotFound
		}
		return err
	}
	if msg.IsDeleted {
		return common.ErrMessageNotFound
	}
	if msg.Kind != domain.KindPoll {
		return common.ErrNotAPoll
	}
	if !actor.IsAdmin() && !actor.Matches(msg.SenderStudentID, msg.SenderStaffID) {
		return common.ErrForbidden
	}
	if req.Question == nil && len(req.Options) == 0 {
		return common.ErrInvalidInput
	}

	var question *string
	if req.Question != nil {
		q := domain.TruncateBody(*req.Question)
		if q == "" {
			return common.ErrInvalidInput
		}
		question = &q
	}

	var optionsJSON, countsJSON *string
	if len(req.Options) > 0 {
		options := domain.NormalizeOptions(req.Options)
		if len(options) < domain.MinPollOptions {
			return common.ErrInvalidInput
		}
		replacement := &domain.Message{}
		if err := replacement.SetPoll(options); err != nil {
			return err
		}
		optionsJSON = &replacement.PollOptions
		countsJSON = &replacement.PollCounts
	}

	if err := s.repo.ReplacePoll(messageID, question, optionsJSON, countsJSON); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrMessageNotFound
		}
		return err
	}
	return nil
}

// Moderate hides or unhides a message, stamping the moderator
func (s *messageService) Moderate(messageID uint64, actor domain.Actor, hidden bool) error {
	if !actor.CanModerate() {
		return common.ErrForbidden
	}
	if err := s.repo.SetHidden(messageID, hidden, actor.StaffID, s.now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrMessageNotFound
		}
		return err
	}
	return nil
}

// Delete soft-deletes a message. Owners may delete their own messages;
// staff may delete any. The mark is terminal.
func (s *messageService) Delete(messageID uint64, actor domain.Actor) error {
	msg, err := s.repo.FindByID(messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrMessageNotFound
		}
		return err
	}
	if msg.IsDeleted {
		return common.ErrMessageNotFound
	}
	if !actor.CanModerate() && !actor.Matches(msg.SenderStudentID, msg.SenderStaffID) {
		return common.ErrForbidden
	}

	if err := s.repo.SoftDelete(messageID, actor.Key(), s.now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrMessageNotFound
		}
		return err
	}
	return nil
}
