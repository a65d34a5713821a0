// Package study holds the state machines behind the quiz and flashcard
// screens. Neither type does any I/O.
package study

import (
	"errors"
	"math"

	"github.com/nhle/smartnote/internal/model"
)

var (
	ErrNoSelection     = errors.New("no option selected")
	ErrAlreadyAnswered = errors.New("question already answered")
	ErrNotAnswered     = errors.New("question not answered yet")
)

// QuizSession walks through a fixed list of questions. An answer is
// selected, then submitted, then the session advances.
type QuizSession struct {
	questions []model.QuizQuestion
	index     int
	selected  int
	answered  bool
	score     int
	finished  bool
	answers   []int
}

// NewQuiz starts a session. A session with no questions is finished.
func NewQuiz(questions []model.QuizQuestion) *QuizSession {
	return &QuizSession{
		questions: questions,
		selected:  -1,
		finished:  len(questions) == 0,
		answers:   make([]int, 0, len(questions)),
	}
}

func (q *QuizSession) Len() int       { return len(q.questions) }
func (q *QuizSession) Index() int     { return q.index }
func (q *QuizSession) Selected() int  { return q.selected }
func (q *QuizSession) Answered() bool { return q.answered }
func (q *QuizSession) Score() int     { return q.score }
func (q *QuizSession) Finished() bool { return q.finished }
func (q *QuizSession) IsLast() bool   { return q.index == len(q.questions)-1 }
func (q *QuizSession) Answers() []int { return q.answers }

// Current returns the question being shown.
func (q *QuizSession) Current() (model.QuizQuestion, bool) {
	if q.finished {
		return model.QuizQuestion{}, false
	}
	return q.questions[q.index], true
}

// Select marks option i. It is ignored once the question is answered or
// when i is out of range.
func (q *QuizSession) Select(i int) {
	cur, ok := q.Current()
	if !ok || q.answered || i < 0 || i >= len(cur.Options) {
		return
	}
	q.selected = i
}

// Submit locks in the selected option and reports whether it was correct.
func (q *QuizSession) Submit() (bool, error) {
	cur, ok := q.Current()
	if !ok {
		return false, ErrAlreadyAnswered
	}
	if q.answered {
		return false, ErrAlreadyAnswered
	}
	if q.selected < 0 {
		return false, ErrNoSelection
	}

	q.answered = true
	q.answers = append(q.answers, q.selected)
	correct := q.selected == cur.CorrectAnswerIndex
	if correct {
		q.score++
	}
	return correct, nil
}

// Next advances to the following question, or finishes the session after
// the last one.
func (q *QuizSession) Next() error {
	if q.finished {
		return nil
	}
	if !q.answered {
		return ErrNotAnswered
	}
	if q.IsLast() {
		q.finished = true
		return nil
	}
	q.index++
	q.selected = -1
	q.answered = false
	return nil
}

// Percent is the rounded share of correct answers.
func (q *QuizSession) Percent() int {
	if len(q.questions) == 0 {
		return 0
	}
	return int(math.Round(float64(q.score) / float64(len(q.questions)) * 100))
}

// Progress is the 1-based position used by the progress bar.
func (q *QuizSession) Progress() float64 {
	if len(q.questions) == 0 {
		return 1
	}
	return float64(q.index+1) / float64(len(q.questions))
}
