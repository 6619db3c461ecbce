package httpapp

import (
	"net/http"

	"github.com/alphabot-ai/qna/internal/model"
)

// handleListAnswers godoc
//
//	@Summary	List the answers of a question
//	@Tags		Answers
//	@Produce	json
//	@Param		id	query		int	true	"Question ID"
//	@Success	200	{array}		model.Answer
//	@Failure	400	{string}	string	"Missing parameter"
//	@Router		/answers [get]
func (s *Server) handleListAnswers(w http.ResponseWriter, r *http.Request) {
	id, ok := queryID(w, r, "id")
	if !ok {
		return
	}
	answers, err := s.store.ListAnswers(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err, msgAnswerNotFound)
		return
	}
	if answers == nil {
		answers = []model.Answer{}
	}
	writePretty(w, http.StatusOK, answers)
}

// handleCreateAnswer godoc
//
//	@Summary		Answer a question
//	@Description	The question must exist when the answer is added.
//	@Tags			Answers
//	@Accept			json
//	@Produce		plain
//	@Security		BearerAuth
//	@Param			answer	body		model.Answer	true	"Answer"
//	@Success		200		{string}	string			"Answer added"
//	@Failure		404		{string}	string			"Question not found"
//	@Router			/answers [post]
func (s *Server) handleCreateAnswer(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAuth(w, r); !ok {
		return
	}
	if !s.allowWrite(w, r) {
		return
	}

	var answer model.Answer
	if err := readJSON(r.Body, &answer); err != nil {
		writeBadBody(w, err)
		return
	}
	if answer.QuestionID == 0 {
		writeText(w, http.StatusBadRequest, msgMissingParameter)
		return
	}
	if _, err := s.store.GetQuestion(r.Context(), answer.QuestionID); err != nil {
		s.writeStoreError(w, err, msgQuestionNotFound)
		return
	}
	content, err := s.censorText(r, answer.Content)
	if err != nil {
		writeText(w, http.StatusBadGateway, err.Error())
		return
	}
	answer.ID = 0
	answer.Content = content
	if _, err := s.store.CreateAnswer(r.Context(), &answer); err != nil {
		s.writeStoreError(w, err, msgAnswerNotFound)
		return
	}
	writeText(w, http.StatusOK, "Answer added")
}

// handleUpdateAnswers godoc
//
//	@Summary		Replace the answers of a question
//	@Description	Sets the content of every answer of the question.
//	@Tags			Answers
//	@Accept			json
//	@Produce		plain
//	@Security		BearerAuth
//	@Param			id		query		int				true	"Question ID"
//	@Param			answer	body		model.Answer	true	"Answer"
//	@Success		200		{string}	string			"Answer updated"
//	@Failure		404		{string}	string			"Answer not found"
//	@Router			/answers [put]
func (s *Server) handleUpdateAnswers(w http.ResponseWriter, r *http.Request) {
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

	var answer model.Answer
	if err := readJSON(r.Body, &answer); err != nil {
		writeBadBody(w, err)
		return
	}
	content, err := s.censorText(r, answer.Content)
	if err != nil {
		writeText(w, http.StatusBadGateway, err.Error())
		return
	}
	if err := s.store.UpdateAnswers(r.Context(), id, content); err != nil {
		s.writeStoreError(w, err, msgAnswerNotFound)
		return
	}
	writeText(w, http.StatusOK, "Answer updated")
}

// handleDeleteAnswers godoc
//
//	@Summary	Delete the answers of a question
//	@Tags		Answers
//	@Produce	plain
//	@Security	BearerAuth
//	@Param		id	query		int		true	"Question ID"
//	@Success	200	{string}	string	"Answer deleted"
//	@Failure	404	{string}	string	"Answer not found"
//	@Router		/answers [delete]
func (s *Server) handleDeleteAnswers(w http.ResponseWriter, r *http.Request) {
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
	if err := s.store.DeleteAnswers(r.Context(), id); err != nil {
		s.writeStoreError(w, err, msgAnswerNotFound)
		return
	}
	writeText(w, http.StatusOK, "Answer deleted")
}
