package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"notesweb/dto"
	"notesweb/model"
	"notesweb/repository"
	"notesweb/usecase"
	"notesweb/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type NotesHandler struct {
	notesService *usecase.NotesService
}

func NewNotesHandler(notesService *usecase.NotesService) *NotesHandler {
	return &NotesHandler{notesService: notesService}
}

// Index renders the note list with the sidebar filters applied.
func (h *NotesHandler) Index(c *gin.Context) {
	filter := FilterFromQuery(c)
	page := dto.IndexPage{
		Error:    c.Query("error"),
		ReturnTo: SanitizeReturnTo(c.Request.URL.RequestURI()),
	}

	status := http.StatusOK
	notes, err := h.notesService.ListNotes(c.Request.Context(), filter)
	if err != nil {
		status = upstreamStatus(err)
		page.Error = usecase.UserMessage(err)
		notes = nil
	}

	page.Sidebar = dto.SidebarFromFilter(filter, notes)
	page.Notes = dto.ToNoteCards(notes, h.notesService.IsMutating)
	c.HTML(status, "index.tmpl", page)
}

func (h *NotesHandler) NewNote(c *gin.Context) {
	c.HTML(http.StatusOK, "form.tmpl", dto.NoteFormPage{
		TagPreview: []string{},
		ReturnTo:   SanitizeReturnTo(c.Query("return_to")),
	})
}

func (h *NotesHandler) EditNote(c *gin.Context) {
	noteID := c.Param("id")

	note, err := h.notesService.FindNote(c.Request.Context(), noteID)
	if err != nil {
		if errors.Is(err, usecase.ErrNoteNotFound) {
			c.String(http.StatusNotFound, usecase.UserMessage(err))
			return
		}
		c.String(upstreamStatus(err), usecase.UserMessage(err))
		return
	}

	form := usecase.FormFromNote(note)
	c.HTML(http.StatusOK, "form.tmpl", dto.NoteFormPage{
		IsEdit:     true,
		NoteID:     noteID,
		Form:       form,
		TagPreview: form.Tags(),
		ReturnTo:   SanitizeReturnTo(c.Query("return_to")),
	})
}

func (h *NotesHandler) CreateNote(c *gin.Context) {
	page, ok := bindNoteForm(c, false)
	if !ok {
		return
	}

	_, err := h.notesService.CreateNote(c.Request.Context(), page.Form)
	h.finishForm(c, page, err)
}

func (h *NotesHandler) UpdateNote(c *gin.Context) {
	page, ok := bindNoteForm(c, true)
	if !ok {
		return
	}

	_, err := h.notesService.UpdateNote(c.Request.Context(), page.NoteID, page.Form)
	h.finishForm(c, page, err)
}

func (h *NotesHandler) DeleteNote(c *gin.Context) {
	_, err := h.notesService.DeleteNote(c.Request.Context(), c.Param("id"))
	redirectAfterMutation(c, err)
}

func (h *NotesHandler) TogglePinned(c *gin.Context) {
	_, err := h.notesService.TogglePinned(c.Request.Context(), c.Param("id"), currentFlag(c))
	redirectAfterMutation(c, err)
}

func (h *NotesHandler) ToggleFavorite(c *gin.Context) {
	_, err := h.notesService.ToggleFavorite(c.Request.Context(), c.Param("id"), currentFlag(c))
	redirectAfterMutation(c, err)
}

// Health reports whether the notes service answers its root endpoint.
func (h *NotesHandler) Health(c *gin.Context) {
	if err := h.notesService.Health(c.Request.Context()); err != nil {
		utils.ServiceUnavailable(c, usecase.UserMessage(err))
		return
	}
	utils.Success(c, gin.H{"status": "ok"})
}

// bindNoteForm binds and validates the submitted form. Field errors re-render
// the form with 422; a malformed submission answers 400.
func bindNoteForm(c *gin.Context, isEdit bool) (dto.NoteFormPage, bool) {
	var form usecase.NoteForm
	err := c.ShouldBind(&form)
	page := dto.NoteFormPage{
		IsEdit:     isEdit,
		Form:       form,
		TagPreview: form.Tags(),
		ReturnTo:   SanitizeReturnTo(c.PostForm("return_to")),
	}
	if isEdit {
		page.NoteID = c.Param("id")
	}
	if err == nil {
		return page, true
	}

	if formErrs, ok := usecase.FormErrorsFrom(err); ok {
		page.Errors = formErrs
		c.HTML(http.StatusUnprocessableEntity, "form.tmpl", page)
		return page, false
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		utils.RequestTooLarge(c, "Request body too large")
		return page, false
	}
	c.String(http.StatusBadRequest, "Invalid form submission")
	return page, false
}

// finishForm redirects on success and re-renders the form otherwise, with
// the failure text shown as received.
func (h *NotesHandler) finishForm(c *gin.Context, page dto.NoteFormPage, err error) {
	if err == nil {
		c.Redirect(http.StatusSeeOther, page.ReturnTo)
		return
	}

	var formErrs usecase.FormErrors
	if errors.As(err, &formErrs) {
		page.Errors = formErrs
		c.HTML(http.StatusUnprocessableEntity, "form.tmpl", page)
		return
	}

	utils.Logger.WithError(err).WithField("status", repository.StatusCode(err)).Warn("note form submission failed")
	page.Error = usecase.UserMessage(err)
	c.HTML(upstreamStatus(err), "form.tmpl", page)
}

func redirectAfterMutation(c *gin.Context, err error) {
	target := SanitizeReturnTo(c.PostForm("return_to"))
	if err != nil {
		utils.Logger.WithError(err).WithFields(logrus.Fields{
			"note_id": c.Param("id"),
			"status":  repository.StatusCode(err),
		}).Warn("note action failed")
		target = withError(target, usecase.UserMessage(err))
	}
	c.Redirect(http.StatusSeeOther, target)
}

func currentFlag(c *gin.Context) bool {
	current, _ := strconv.ParseBool(c.PostForm("current"))
	return current
}

// FilterFromQuery reads the list filter from the page's query string.
func FilterFromQuery(c *gin.Context) model.ListFilter {
	return model.ListFilter{
		Query:    strings.TrimSpace(c.Query("q")),
		Tag:      c.Query("tag"),
		Pinned:   parseFlag(c.Query("pinned")),
		Favorite: parseFlag(c.Query("favorite")),
	}
}

func parseFlag(value string) *bool {
	if value == "" {
		return nil
	}
	if value == "on" {
		return model.Bool(true)
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return nil
	}
	return &b
}

// SanitizeReturnTo keeps redirects on this site and drops any stale error
// message. Anything else becomes "/".
func SanitizeReturnTo(raw string) string {
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return "/"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host != "" || u.Scheme != "" {
		return "/"
	}
	query := u.Query()
	query.Del("error")
	u.RawQuery = query.Encode()
	u.Fragment = ""
	return u.RequestURI()
}

func withError(target, message string) string {
	u, err := url.Parse(target)
	if err != nil {
		return "/?error=" + url.QueryEscape(message)
	}
	query := u.Query()
	query.Set("error", message)
	u.RawQuery = query.Encode()
	return u.RequestURI()
}

func upstreamStatus(err error) int {
	switch {
	case errors.Is(err, repository.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, usecase.ErrMutationInProgress):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}
