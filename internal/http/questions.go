package httpapp

import (
	"net/http"

	"github.com/alphabot-ai/qna/internal/model"
)

// handleListQuestions godoc
//
//	@Summary		List questions
//	@Description	List every question, or only those whose id lies in [start, end]. start and end must be given together.
//	@Tags			Questions
//	@Produce		json
//	@Param			start	query		int	false	"First id of the range"
//	@Param			end		query		int	false	"Last id of the range"
//	@Success		200		{array}		model.Question
//	@Failure		400		{string}	string	"Missing parameter"
//	@Router			/questions [get]
func (s *Server) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	startRaw, endRaw := q.Get("start"), q.Get("end")

	var (
		questions []model.Question
		err       error
	)
	if startRaw == "" && endRaw == "" {
		questions, err = s.store.ListQuestions(r.Context())
	} else {
		var start, end *model.ID
		if start, err = optionalID(startRaw); err == nil {
			end, err = optionalID(endRaw)
		}
		if err == nil {
			questions, err = s.store.ListQuestionRange(r.Context(), start, end)
		}
	}
	if err != nil {
		s.writeStoreError(w, err, msgQuestionNotFound)
		return
	}
	if questions == nil {
		questions = []model.Question{}
	}
	writePretty(w, http.StatusOK, questions)
}

// handleGetQuestion godoc
//
//	@Summary	Get a question
//	@Tags		Questions
//	@Produce	json
//	@Param		id	query		int	true	"Question ID"
//	@Success	200	{object}	model.Question
//	@Failure	400	{string}	string	"Missing parameter"
//	@Failure	404	{string}	string	"Question not found"
//	@Router		/question [get]
func (s *Server) handleGetQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := queryID(w, r, "id")
	if !ok {
		return
	}
	question, err := s.store.GetQuestion(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err, msgQuestionNotFound)
		return
	}
	writePretty(w, http.StatusOK, question)
}

// handleCreateQuestion godoc
//
//	@Summary		Add a question
//	@Description	Store a question. Without an id the next free id is assigned. Title and content pass through the profanity filter first.
//	@Tags			Questions
//	@Accept			json
//	@Produce		plain
//	@Security		BearerAuth
//	@Param			question	body		model.Question	true	"Question"
//	@Success		200			{string}	string			"Question added"
//	@Failure		400			{object}	map[string]any	"Invalid token"
//	@Failure		409			{string}	string			"Duplicate id"
//	@Failure		502			{string}	string			"Profanity check failed"
//	@Router			/questions [post]
func (s *Server) handleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAuth(w, r); !ok {
		return
	}
	if !s.allowWrite(w, r) {
		return
	}

	var question model.Question
	if err := readJSON(r.Body, &question); err != nil {
		writeBadBody(w, err)
		return
	}
	if !s.censorQuestion(w, r, &question) {
		return
	}
	if _, err := s.store.CreateQuestion(r.Context(), &question); err != nil {
		s.writeStoreError(w, err, msgQuestionNotFound)
		return
	}
	writeText(w, http.StatusOK, "Question added")
}

// handleUpdateQuestion godoc
//
//	@Summary		Replace a question
//	@Description	Replace the whole question. Fields left out of the body are cleared.
//	@Tags			Questions
//	@Accept			json
//	@Produce		plain
//	@Security		BearerAuth
//	@Param			id			query		int				true	"Question ID"
//	@Param			question	body		model.Question	true	"Question"
//	@Success		200			{string}	string			"Question updated"
//	@Failure		404			{string}	string			"Question not found"
//	@Router			/questions [put]
func (s *Server) handleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAuth(w, r); !ok {
		return
	}
	if !s.allowWrite(w, r) {
		return
	}
	id, ok := queryID(w, r, "id")
	if !ok {
		return
	}

	var question model.Question
	if err := readJSON(r.Body, &question); err != nil {
		writeBadBody(w, err)
		return
	}
	question.ID = id
	if !s.censorQuestion(w, r, &question) {
		return
	}
	if err := s.store.UpdateQuestion(r.Context(), id, question); err != nil {
		s.writeStoreError(w, err, msgQuestionNotFound)
		return
	}
	writeText(w, http.StatusOK, "Question updated")
}

// handleDeleteQuestion godoc
//
//	@Summary		Delete a question
//	@Description	Delete a question. Its answers are kept.
//	@Tags			Questions
//	@Produce		plain
//	@Security		BearerAuth
//	@Param			id	query		int		true	"Question ID"
//	@Success		200	{string}	string	"Question deleted"
//	@Failure		404	{string}	string	"Question not found"
//	@Router			/questions [delete]
func (s *Server) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAuth(w, r); !ok {
		return
	}
	if !s.allowWrite(w, r) {
		return
	}
	id, ok := queryID(w, r, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteQuestion(r.Context(), id); err != nil {
		s.writeStoreError(w, err, msgQuestionNotFound)
		return
	}
	writeText(w, http.StatusOK, "Question deleted")
}

func (s *Server) censorQuestion(w http.ResponseWriter, r *http.Request, q *model.Question) bool {
	title, err := s.censorText(r, q.Title)
	if err != nil {
		writeText(w, http.StatusBadGateway, err.Error())
		return false
	}
	content, err := s.censorText(r, q.Content)
	if err != nil {
		writeText(w, http.StatusBadGateway, err.Error())
		return false
	}
	q.Title, q.Content = title, content
	return true
}

// optionalID parses a range bound; an empty value is an absent bound.
func optionalID(raw string) (*model.ID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := model.ParseID(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
