package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aquaman122/auto-report/config"
	"github.com/aquaman122/auto-report/internal/models"
	apperrors "github.com/aquaman122/auto-report/pkg/errors"
	"github.com/aquaman122/auto-report/pkg/logger"
)

// PostgresStore persists records in a Supabase-hosted Postgres database.
type PostgresStore struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresStore(ctx context.Context, cfg *config.DatabaseConfig, log logger.Logger) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &PostgresStore{db: pool, logger: log}, nil
}

// New selects the driver from config: postgres when a database URL is
// set, memory otherwise.
func New(ctx context.Context, cfg *config.DatabaseConfig, log logger.Logger) (Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return NewPostgresStore(ctx, cfg, log)
	case config.DriverMemory:
		log.Warn("No database URL configured, using in-memory store")
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func (s *PostgresStore) SaveAudioFile(ctx context.Context, file *models.AudioFile) error {
	query := `
		INSERT INTO audio_files (
			file_name, original_name, file_path, file_size,
			mime_type, duration_seconds, status, uploaded_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, 'uploaded', now(), now())
		RETURNING id, status, uploaded_at, updated_at
	`
	err := s.db.QueryRow(ctx, query,
		file.FileName,
		file.OriginalName,
		file.FilePath,
		file.FileSize,
		file.MimeType,
		nullableFloat(file.DurationSeconds),
	).Scan(&file.ID, &file.Status, &file.UploadedAt, &file.UpdatedAt)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrPersistence, "saving audio file: %v", err)
	}
	s.logger.Info("Audio file record saved", logger.Int64("id", file.ID))
	return nil
}

func (s *PostgresStore) UpdateAudioFileStatus(ctx context.Context, id int64, status models.AudioStatus, errorMessage string) error {
	query := `
		UPDATE audio_files
		SET status = $2,
			updated_at = now(),
			processed_at = CASE WHEN $2 = 'completed' THEN now() ELSE processed_at END,
			error_message = COALESCE(NULLIF($3, ''), error_message)
		WHERE id = $1
	`
	tag, err := s.db.Exec(ctx, query, id, string(status), errorMessage)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrPersistence, "updating audio file %d: %v", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.Wrap(apperrors.ErrNotFound, "audio file %d", id)
	}
	return nil
}

func (s *PostgresStore) SaveMeeting(ctx context.Context, m *models.StructuredMeeting, audioFileID *int64) (*models.Meeting, error) {
	meeting := newMeetingRow(m, audioFileID, time.Now())

	query := `
		INSERT INTO meetings (
			audio_file_id, meeting_title, meeting_date, start_time, end_time,
			location, meeting_type, agenda_items, status, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`
	err := s.db.QueryRow(ctx, query,
		audioFileID,
		meeting.Title,
		meeting.MeetingDate,
		nullableString(meeting.StartTime),
		nullableString(meeting.EndTime),
		nullableString(meeting.Location),
		meeting.MeetingType,
		meeting.AgendaTitles,
		meeting.Status,
		meeting.CreatedBy,
	).Scan(&meeting.ID, &meeting.CreatedAt)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, "saving meeting: %v", err)
	}

	for _, p := range m.Participants {
		_, err := s.db.Exec(ctx, `
			INSERT INTO meeting_participants (meeting_id, name, department, role_in_meeting, speaking_time_percent)
			VALUES ($1, $2, $3, $4, $5)
		`, meeting.ID, p.Name, nullableString(p.Department), participantRole(p.Role), models.SpeakingTimePercent(p.SpeakingFrequency))
		if err != nil {
			s.logger.Error("Saving participant failed",
				logger.Int64("meeting_id", meeting.ID),
				logger.String("name", p.Name),
				logger.Error(err),
			)
		}
	}

	for i, agenda := range m.Agendas {
		order := agenda.Order
		if order == 0 {
			order = i + 1
		}
		var agendaID int64
		err := s.db.QueryRow(ctx, `
			INSERT INTO meeting_agendas (
				meeting_id, agenda_order, agenda_title, discussion_content,
				key_points, decision, status
			) VALUES ($1, $2, $3, $4, $5, $6, 'pending')
			RETURNING id
		`, meeting.ID, order, agenda.Title, agenda.Discussion, agenda.KeyPoints, nullableString(agenda.Decisions)).Scan(&agendaID)
		if err != nil {
			s.logger.Error("Saving agenda failed",
				logger.Int64("meeting_id", meeting.ID),
				logger.String("title", agenda.Title),
				logger.Error(err),
			)
			continue
		}

		for _, item := range agenda.ActionItems {
			_, err := s.db.Exec(ctx, `
				INSERT INTO action_items (meeting_id, agenda_id, task_description, assignee, deadline, priority, status)
				VALUES ($1, $2, $3, $4, $5, $6, 'open')
			`, meeting.ID, agendaID, item.Task, item.Assignee, nullableString(item.Deadline), item.Priority)
			if err != nil {
				s.logger.Error("Saving action item failed",
					logger.Int64("agenda_id", agendaID),
					logger.Error(err),
				)
			}
		}
	}

	s.logger.Info("Meeting data saved", logger.Int64("meeting_id", meeting.ID))
	return &meeting, nil
}

func (s *PostgresStore) SaveVoiceAnalysis(ctx context.Context, analysis *models.VoiceAnalysis) error {
	query := `
		INSERT INTO voice_analysis (
			audio_file_id, original_text, summary_text, key_topics,
			overall_sentiment, meeting_effectiveness, total_speakers,
			main_speaker, confidence_score, ai_model_version, processing_time_seconds
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`
	err := s.db.QueryRow(ctx, query,
		analysis.AudioFileID,
		analysis.OriginalText,
		analysis.SummaryText,
		analysis.KeyTopics,
		analysis.OverallSentiment,
		analysis.MeetingEffectiveness,
		analysis.TotalSpeakers,
		nullableString(analysis.MainSpeaker),
		analysis.ConfidenceScore,
		analysis.ModelVersion,
		analysis.ProcessingTimeSeconds,
	).Scan(&analysis.ID, &analysis.CreatedAt)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrPersistence, "saving voice analysis: %v", err)
	}
	return nil
}

func (s *PostgresStore) SaveGeneratedDocument(ctx context.Context, doc *models.GeneratedDocument) error {
	if doc.ApprovalStatus == "" {
		doc.ApprovalStatus = "pending"
	}
	query := `
		INSERT INTO generated_documents (
			meeting_id, document_type, file_name, file_path,
			file_format, template_used, generated_at, is_final, approval_status
		) VALUES ($1, $2, $3, $4, $5, $6, now(), $7, $8)
		RETURNING id, generated_at
	`
	err := s.db.QueryRow(ctx, query,
		doc.MeetingID,
		doc.DocumentType,
		doc.FileName,
		doc.FilePath,
		doc.FileFormat,
		doc.TemplateUsed,
		doc.IsFinal,
		doc.ApprovalStatus,
	).Scan(&doc.ID, &doc.GeneratedAt)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrPersistence, "saving generated document: %v", err)
	}
	return nil
}

const meetingColumns = `
	id, audio_file_id, meeting_title, meeting_date,
	COALESCE(start_time, ''), COALESCE(end_time, ''), COALESCE(location, ''),
	meeting_type, agenda_items, status, COALESCE(approved_by, ''), created_by, created_at
`

func scanMeeting(row pgx.Row) (*models.Meeting, error) {
	var m models.Meeting
	err := row.Scan(
		&m.ID, &m.AudioFileID, &m.Title, &m.MeetingDate,
		&m.StartTime, &m.EndTime, &m.Location,
		&m.MeetingType, &m.AgendaTitles, &m.Status, &m.ApprovedBy, &m.CreatedBy, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *PostgresStore) ListMeetings(ctx context.Context, limit, offset int) ([]models.MeetingDetail, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`
	rows, err := s.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, "listing meetings: %v", err)
	}
	defer rows.Close()

	var meetings []*models.Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrPersistence, "scanning meeting: %v", err)
		}
		meetings = append(meetings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, "listing meetings: %v", err)
	}

	details := make([]models.MeetingDetail, 0, len(meetings))
	for _, m := range meetings {
		detail, err := s.loadDetail(ctx, m)
		if err != nil {
			return nil, err
		}
		details = append(details, *detail)
	}
	return details, nil
}

func (s *PostgresStore) GetMeetingByID(ctx context.Context, id int64) (*models.MeetingDetail, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE id = $1`
	m, err := scanMeeting(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "meeting %d", id)
		}
		return nil, apperrors.Wrap(apperrors.ErrPersistence, "loading meeting %d: %v", id, err)
	}
	return s.loadDetail(ctx, m)
}

func (s *PostgresStore) loadDetail(ctx context.Context, m *models.Meeting) (*models.MeetingDetail, error) {
	detail := &models.MeetingDetail{
		Meeting:      *m,
		Participants: []models.MeetingParticipant{},
		Agendas:      []models.MeetingAgenda{},
		Documents:    []models.GeneratedDocument{},
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, meeting_id, name, COALESCE(department, ''), role_in_meeting, speaking_time_percent
		FROM meeting_participants WHERE meeting_id = $1 ORDER BY id
	`, m.ID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, "loading participants: %v", err)
	}
	for rows.Next() {
		var p models.MeetingParticipant
		if err := rows.Scan(&p.ID, &p.MeetingID, &p.Name, &p.Department, &p.RoleInMeeting, &p.SpeakingTimePercent); err != nil {
			rows.Close()
			return nil, apperrors.Wrap(apperrors.ErrPersistence, "scanning participant: %v", err)
		}
		detail.Participants = append(detail.Participants, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, "loading participants: %v", err)
	}

	rows, err = s.db.Query(ctx, `
		SELECT id, meeting_id, agenda_order, agenda_title,
			COALESCE(discussion_content, ''), key_points, COALESCE(decision, ''), status
		FROM meeting_agendas WHERE meeting_id = $1 ORDER BY agenda_order, id
	`, m.ID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, "loading agendas: %v", err)
	}
	for rows.Next() {
		var a models.MeetingAgenda
		if err := rows.Scan(&a.ID, &a.MeetingID, &a.AgendaOrder, &a.Title, &a.Discussion, &a.KeyPoints, &a.Decision, &a.Status); err != nil {
			rows.Close()
			return nil, apperrors.Wrap(apperrors.ErrPersistence, "scanning agenda: %v", err)
		}
		a.ActionItems = []models.ActionItemRecord{}
		detail.Agendas = append(detail.Agendas, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, "loading agendas: %v", err)
	}

	items, err := s.fetchActionItems(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	byAgenda := make(map[int64][]models.ActionItemRecord)
	for _, item := range items {
		byAgenda[item.AgendaID] = append(byAgenda[item.AgendaID], item)
	}
	for i := range detail.Agendas {
		if list, ok := byAgenda[detail.Agendas[i].ID]; ok {
			detail.Agendas[i].ActionItems = list
		}
	}

	rows, err = s.db.Query(ctx, `
		SELECT id, meeting_id, document_type, file_name, file_path, file_format,
			template_used, generated_at, is_final, approval_status
		FROM generated_documents WHERE meeting_id = $1 ORDER BY id
	`, m.ID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, "loading documents: %v", err)
	}
	for rows.Next() {
		var d models.GeneratedDocument
		if err := rows.Scan(&d.ID, &d.MeetingID, &d.DocumentType, &d.FileName, &d.FilePath, &d.FileFormat,
			&d.TemplateUsed, &d.GeneratedAt, &d.IsFinal, &d.ApprovalStatus); err != nil {
			rows.Close()
			return nil, apperrors.Wrap(apperrors.ErrPersistence, "scanning document: %v", err)
		}
		detail.Documents = append(detail.Documents, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, "loading documents: %v", err)
	}

	if m.AudioFileID != nil {
		var f models.AudioFile
		err := s.db.QueryRow(ctx, `
			SELECT id, file_name, original_name, file_path, file_size, mime_type,
				COALESCE(duration_seconds, 0), status, COALESCE(error_message, ''),
				uploaded_at, processed_at, updated_at
			FROM audio_files WHERE id = $1
		`, *m.AudioFileID).Scan(
			&f.ID, &f.FileName, &f.OriginalName, &f.FilePath, &f.FileSize, &f.MimeType,
			&f.DurationSeconds, &f.Status, &f.ErrorMessage,
			&f.UploadedAt, &f.ProcessedAt, &f.UpdatedAt,
		)
		if err == nil {
			detail.AudioFile = &f
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Wrap(apperrors.ErrPersistence, "loading audio file: %v", err)
		}

		var v models.VoiceAnalysis
		err = s.db.QueryRow(ctx, `
			SELECT id, audio_file_id, original_text, summary_text, key_topics,
				overall_sentiment, meeting_effectiveness, total_speakers,
				COALESCE(main_speaker, ''), confidence_score, ai_model_version,
				processing_time_seconds, created_at
			FROM voice_analysis WHERE audio_file_id = $1 ORDER BY id DESC LIMIT 1
		`, *m.AudioFileID).Scan(
			&v.ID, &v.AudioFileID, &v.OriginalText, &v.SummaryText, &v.KeyTopics,
			&v.OverallSentiment, &v.MeetingEffectiveness, &v.TotalSpeakers,
			&v.MainSpeaker, &v.ConfidenceScore, &v.ModelVersion,
			&v.ProcessingTimeSeconds, &v.CreatedAt,
		)
		if err == nil {
			detail.Analysis = &v
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Wrap(apperrors.ErrPersistence, "loading voice analysis: %v", err)
		}
	}

	return detail, nil
}

func (s *PostgresStore) UpdateMeeting(ctx context.Context, id int64, update MeetingUpdate) (*models.Meeting, error) {
	query := `
		UPDATE meetings SET
			meeting_title = COALESCE($2, meeting_title),
			meeting_date = COALESCE($3, meeting_date),
			location = COALESCE($4, location),
			meeting_type = COALESCE($5, meeting_type),
			status = COALESCE($6, status)
		WHERE id = $1
		RETURNING ` + meetingColumns
	m, err := scanMeeting(s.db.QueryRow(ctx, query, id, update.Title, update.MeetingDate, update.Location, update.MeetingType, update.Status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "meeting %d", id)
		}
		return nil, apperrors.Wrap(apperrors.ErrPersistence, "updating meeting %d: %v", id, err)
	}
	return m, nil
}

func (s *PostgresStore) UpdateApproval(ctx context.Context, id int64, status, approvedBy string) (*models.Meeting, error) {
	query := `
		UPDATE meetings SET status = $2, approved_by = $3
		WHERE id = $1
		RETURNING ` + meetingColumns
	m, err := scanMeeting(s.db.QueryRow(ctx, query, id, status, approvedBy))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "meeting %d", id)
		}
		return nil, apperrors.Wrap(apperrors.ErrPersistence, "updating approval for meeting %d: %v", id, err)
	}
	return m, nil
}

func (s *PostgresStore) DeleteMeeting(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM meetings WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrPersistence, "deleting meeting %d: %v", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.Wrap(apperrors.ErrNotFound, "meeting %d", id)
	}
	return nil
}

func (s *PostgresStore) fetchActionItems(ctx context.Context, meetingID int64) ([]models.ActionItemRecord, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, meeting_id, agenda_id, task_description, assignee,
			COALESCE(deadline, ''), priority, status, COALESCE(notes, ''), completion_date
		FROM action_items WHERE meeting_id = $1 ORDER BY id
	`, meetingID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, "loading action items: %v", err)
	}
	defer rows.Close()

	var items []models.ActionItemRecord
	for rows.Next() {
		var item models.ActionItemRecord
		if err := rows.Scan(&item.ID, &item.MeetingID, &item.AgendaID, &item.Task, &item.Assignee,
			&item.Deadline, &item.Priority, &item.Status, &item.Notes, &item.CompletionDate); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrPersistence, "scanning action item: %v", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, "loading action items: %v", err)
	}
	return items, nil
}

func (s *PostgresStore) GetActionItems(ctx context.Context, meetingID int64) (*ActionItemSummary, error) {
	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM meetings WHERE id = $1)`, meetingID).Scan(&exists); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, "checking meeting %d: %v", meetingID, err)
	}
	if !exists {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "meeting %d", meetingID)
	}
	items, err := s.fetchActionItems(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	return summarizeActions(items, meetingID), nil
}

func (s *PostgresStore) UpdateActionItem(ctx context.Context, actionID int64, update ActionItemUpdate) (*models.ActionItemRecord, error) {
	query := `
		UPDATE action_items SET
			status = COALESCE($2, status),
			notes = COALESCE($3, notes),
			completion_date = COALESCE($4::date, completion_date)
		WHERE id = $1
		RETURNING id, meeting_id, agenda_id, task_description, assignee,
			COALESCE(deadline, ''), priority, status, COALESCE(notes, ''), completion_date
	`
	var item models.ActionItemRecord
	err := s.db.QueryRow(ctx, query, actionID, update.Status, update.Notes, update.CompletionDate).Scan(
		&item.ID, &item.MeetingID, &item.AgendaID, &item.Task, &item.Assignee,
		&item.Deadline, &item.Priority, &item.Status, &item.Notes, &item.CompletionDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "action item %d", actionID)
		}
		return nil, apperrors.Wrap(apperrors.ErrPersistence, "updating action item %d: %v", actionID, err)
	}
	return &item, nil
}

func (s *PostgresStore) GetStatistics(ctx context.Context) (*models.Statistics, error) {
	stats := &models.Statistics{}
	query := `
		SELECT
			(SELECT count(*) FROM meetings),
			(SELECT count(*) FROM audio_files),
			(SELECT count(*) FROM audio_files WHERE status = 'completed'),
			(SELECT count(*) FROM meetings WHERE created_at >= now() - interval '7 days')
	`
	err := s.db.QueryRow(ctx, query).Scan(
		&stats.TotalMeetings,
		&stats.TotalAudioFiles,
		&stats.CompletedFiles,
		&stats.RecentMeetings,
	)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, "loading statistics: %v", err)
	}
	if stats.TotalAudioFiles > 0 {
		stats.SuccessRate = float64(stats.CompletedFiles) / float64(stats.TotalAudioFiles) * 100
	}
	return stats, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.db.Close()
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullableFloat(f float64) *float64 {
	if f == 0 {
		return nil
	}
	return &f
}
