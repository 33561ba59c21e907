package fight

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Chansovisoth/CS313-TeamBossFight-Backend/internal/domain"
	"github.com/Chansovisoth/CS313-TeamBossFight-Backend/internal/errors"
	"github.com/Chansovisoth/CS313-TeamBossFight-Backend/internal/telemetry"
)

const displayedAnswers = 4

// dispatchQuestion fetches a question and installs it as the player's pending
// question. The catalog fetch runs outside the session lock; eligibility is
// re-checked when the result re-enters, and the question is dropped if the
// player or session moved on in the meantime.
func (s *Service) dispatchQuestion(sess *session, playerID string) {
	ctx := context.Background()

	sess.mu.Lock()
	p := sess.players[playerID]
	if !eligibleForQuestion(sess, p) {
		sess.mu.Unlock()
		return
	}
	categoryID := sess.boss.CategoryID
	exclude := make([]string, 0, len(p.asked))
	for id := range p.asked {
		exclude = append(exclude, id)
	}
	sess.mu.Unlock()

	q, err := s.questions.RandomQuestion(ctx, categoryID, exclude)
	if err != nil {
		// A failed fetch skips this dispatch; the player gets a question on
		// the next cycle trigger.
		slog.ErrorContext(ctx, "fight: question fetch failed",
			"player", playerID,
			"category", categoryID,
			"error", err,
		)
		return
	}

	if err := validateQuestion(q); err != nil {
		// A malformed catalog row is a provider problem, same as a failed
		// fetch: log it and skip the dispatch.
		slog.ErrorContext(ctx, "fight: malformed question skipped",
			"player", playerID,
			"category", categoryID,
			"question", q.ID,
			"error", err,
		)
		return
	}

	pending := buildPendingQuestion(q, s.questionTimeLimit)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	p = sess.players[playerID]
	if !eligibleForQuestion(sess, p) {
		return
	}

	p.dispatchSeq++
	pending.token = p.dispatchSeq
	token := pending.token
	pending.sentAt = time.Now()
	pending.timer = time.AfterFunc(pending.timeLimit, func() {
		s.handleQuestionTimeout(sess, playerID, token)
	})

	p.pending = pending
	p.asked[q.ID] = struct{}{}

	s.eb.Publish(ctx, domain.EventQuestionSent{
		SessionID: sess.id,
		PlayerID:  playerID,
		Question: domain.QuestionView{
			QuestionID: pending.questionID,
			Text:       pending.text,
			Answers:    pending.answers,
			TimeLimit:  pending.timeLimit,
		},
	})
}

func eligibleForQuestion(sess *session, p *player) bool {
	return p != nil &&
		sess.status == domain.SessionActive &&
		p.status == domain.PlayerActive &&
		p.hearts > 0 &&
		p.pending == nil
}

// validateQuestion rejects catalog rows that cannot be played: a question
// needs at least one answer and exactly one of them marked correct.
func validateQuestion(q *domain.Question) error {
	if len(q.Answers) == 0 {
		return errors.New(errors.CodeInternal,
			errors.WithMessagef("question has no answers: question=%s", q.ID))
	}

	correct := 0
	for _, a := range q.Answers {
		if a.Correct {
			correct++
		}
	}
	if correct != 1 {
		return errors.New(errors.CodeInternal,
			errors.WithMessagef("question needs exactly one correct answer, got %d: question=%s", correct, q.ID))
	}

	return nil
}

// buildPendingQuestion picks four of the candidate answers for display, the
// correct one always among them, and records where it landed.
func buildPendingQuestion(q *domain.Question, fallbackLimit time.Duration) *pendingQuestion {
	correct := 0
	wrong := make([]int, 0, len(q.Answers))
	for i, a := range q.Answers {
		if a.Correct {
			correct = i
		} else {
			wrong = append(wrong, i)
		}
	}

	rand.Shuffle(len(wrong), func(i, j int) { wrong[i], wrong[j] = wrong[j], wrong[i] })

	n := displayedAnswers - 1
	if len(wrong) < n {
		n = len(wrong)
	}
	picked := append([]int{correct}, wrong[:n]...)
	rand.Shuffle(len(picked), func(i, j int) { picked[i], picked[j] = picked[j], picked[i] })

	pq := &pendingQuestion{
		questionID: q.ID,
		text:       q.Text,
		timeLimit:  q.TimeLimit,
	}
	if pq.timeLimit <= 0 {
		pq.timeLimit = fallbackLimit
	}

	for i, idx := range picked {
		pq.answers = append(pq.answers, domain.DisplayedAnswer{
			Index: i,
			Text:  q.Answers[idx].Text,
		})
		if idx == correct {
			pq.correctIndex = i
		}
	}

	return pq
}

// SubmitAnswer processes a player's answer to their pending question. The
// pending question is consumed atomically; a submission racing a timeout that
// already fired fails with FailedPrecondition and mutates nothing.
func (s *Service) SubmitAnswer(ctx context.Context, playerID string, answerIndex int) (*domain.AnswerResult, error) {
	sess, err := s.sessionByPlayer(playerID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	p := sess.players[playerID]
	if p == nil {
		return nil, errors.New(errors.CodeNotFound,
			errors.WithMessagef("player session not found: player=%s", playerID))
	}

	if sess.status != domain.SessionActive {
		return nil, errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("boss fight not active: session=%s", sess.id))
	}

	if p.status != domain.PlayerActive || p.pending == nil {
		return nil, errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("no pending question: player=%s", playerID))
	}

	if answerIndex < 0 || answerIndex >= displayedAnswers {
		return nil, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("answer index out of range: %d", answerIndex))
	}

	// Consume the pending question; the armed timeout is now stale.
	pending := p.pending
	pending.timer.Stop()
	p.pending = nil

	responseTime := time.Since(pending.sentAt)
	correct := answerIndex == pending.correctIndex

	p.questionsAnswered++

	result := &domain.AnswerResult{
		PlayerID:   playerID,
		SessionID:  sess.id,
		QuestionID: pending.questionID,
		Correct:    correct,
		Damage:     decimal.Zero,
	}
	result.ResponseTime = responseTime

	if correct {
		p.correctAnswers++
		telemetry.AnswersSubmitted.WithLabelValues("correct").Inc()

		damage := damageForResponseTime(responseTime)
		applyDamage(sess, p, damage)
		result.Damage = damage

		s.eb.Publish(ctx, domain.EventDamageDealt{
			SessionID:   sess.id,
			PlayerID:    playerID,
			Nickname:    p.nickname,
			TeamID:      p.teamID,
			Damage:      damage,
			BossHP:      sess.currentHP,
			TeamDamage:  sess.teams[p.teamID].totalDamage,
			TotalDamage: sess.totalDamage,
		})

		for _, award := range checkMilestones(sess, p) {
			s.eb.Publish(ctx, award)
		}
	} else {
		p.incorrectAnswers++
		p.hearts--
		telemetry.AnswersSubmitted.WithLabelValues("incorrect").Inc()

		if p.hearts <= 0 {
			s.knockOut(ctx, sess, p)
		}
	}

	result.HeartsRemaining = p.hearts
	result.BossHP = sess.currentHP
	result.BossDefeated = correct && isDefeated(sess)

	s.eb.Publish(ctx, domain.EventAnswerSubmitted{
		SessionID:       sess.id,
		PlayerID:        playerID,
		QuestionID:      pending.questionID,
		Correct:         correct,
		ResponseTime:    responseTime,
		Damage:          result.Damage,
		HeartsRemaining: p.hearts,
	})

	if result.BossDefeated {
		s.defeatBoss(ctx, sess, p)
	} else {
		s.scheduleNextQuestion(sess, p)
	}

	return result, nil
}

// handleQuestionTimeout is the timer path. It fires only if the dispatch
// identified by token is still the unconsumed pending question and scores it
// as incorrect.
func (s *Service) handleQuestionTimeout(sess *session, playerID string, token uint64) {
	ctx := context.Background()

	sess.mu.Lock()
	defer sess.mu.Unlock()

	p := sess.players[playerID]
	if p == nil || p.pending == nil || p.pending.token != token {
		return // consumed by an answer, or the session moved on
	}
	if sess.status != domain.SessionActive {
		return
	}

	questionID := p.pending.questionID
	p.pending = nil
	p.questionsAnswered++
	p.incorrectAnswers++
	p.hearts--
	telemetry.AnswersSubmitted.WithLabelValues("timeout").Inc()

	s.eb.Publish(ctx, domain.EventQuestionTimeout{
		SessionID:       sess.id,
		PlayerID:        playerID,
		QuestionID:      questionID,
		HeartsRemaining: p.hearts,
	})

	if p.hearts <= 0 {
		s.knockOut(ctx, sess, p)
		return
	}

	s.scheduleNextQuestion(sess, p)
}

// scheduleNextQuestion arms the pacing delay before the next dispatch, if the
// player is still eligible to receive one. Callers hold sess.mu.
func (s *Service) scheduleNextQuestion(sess *session, p *player) {
	if sess.status != domain.SessionActive || p.status != domain.PlayerActive || p.hearts <= 0 {
		return
	}

	playerID := p.id
	time.AfterFunc(s.questionDelay, func() {
		s.dispatchQuestion(sess, playerID)
	})
}
