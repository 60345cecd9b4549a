package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/service"
	"github.com/erazemk/lostfound/internal/view"
)

type indexData struct {
	PageData
	Filter     string
	Statuses   []string
	Items      []model.Item
	ExpandedID int64
	Form       bool
	// Form values echoed back after a rejected submission.
	Values url.Values
}

// IndexPage handles GET /. The query carries the view state: status selects
// the tab, expanded the open card and form=1 opens the submission form.
func (s *Server) IndexPage(w http.ResponseWriter, r *http.Request) {
	v := s.stateFromQuery(r.URL.Query())

	items, err := s.Service.List(r.Context(), "")
	data := s.indexData(v, r.URL.Query())
	if err != nil {
		data.Error = service.PublicMessage(err)
	} else {
		v.Load(items)
		data.Items = v.Visible()
	}

	switch r.URL.Query().Get("msg") {
	case "submitted":
		data.Success = "Thanks, your item was posted."
	case "found":
		data.Success = "Thanks, the owner will be told it was found."
	}

	s.Templates.Render(w, http.StatusOK, "index.html", data)
}

// ReportSubmit handles POST /report, the new item form.
func (s *Server) ReportSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.MaxUploadBytes)
	if err := r.ParseMultipartForm(1 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		s.rerender(w, r, http.StatusBadRequest, "Photo is too large or the form is malformed")
		return
	}

	sub := service.Submission{
		Title:        r.FormValue("title"),
		Description:  r.FormValue("description"),
		Status:       r.FormValue("status"),
		Location:     r.FormValue("location"),
		SecretDetail: r.FormValue("secretDetail"),
	}
	if file, _, err := r.FormFile("image"); err == nil {
		defer file.Close()
		sub.Image = file
	}

	item, err := s.Service.Submit(r.Context(), sub)
	if err != nil {
		s.rerender(w, r, service.StatusCode(err), service.PublicMessage(err))
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/?status=%s&msg=submitted", url.QueryEscape(item.Status)), http.StatusSeeOther)
}

// FoundSubmit handles POST /found, the "I found this" form on a lost card.
func (s *Server) FoundSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.MaxUploadBytes)
	if err := r.ParseMultipartForm(1 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		s.rerender(w, r, http.StatusBadRequest, "Photo is too large or the form is malformed")
		return
	}

	sub := service.FoundSubmission{
		ItemID: r.FormValue("itemId"),
		Phone:  r.FormValue("phone"),
	}
	if file, _, err := r.FormFile("foundImage"); err == nil {
		defer file.Close()
		sub.Image = file
	}

	if _, err := s.Service.ReportFound(r.Context(), sub); err != nil {
		s.rerender(w, r, service.StatusCode(err), service.PublicMessage(err))
		return
	}

	http.Redirect(w, r, "/?status="+model.StatusLost+"&msg=found", http.StatusSeeOther)
}

// rerender shows the list again with an error and the submitted values.
func (s *Server) rerender(w http.ResponseWriter, r *http.Request, status int, msg string) {
	values := url.Values{}
	if r.Form != nil {
		values = r.Form
	}

	v := s.stateFromQuery(values)
	if r.URL.Path == "/report" {
		v.ShowForm()
	}
	v.SubmitFailed(errors.New(msg))

	data := s.indexData(v, values)
	if items, err := s.Service.List(r.Context(), ""); err == nil {
		v.Load(items)
		data.Items = v.Visible()
	}
	data.Error = msg
	s.Templates.Render(w, status, "index.html", data)
}

// stateFromQuery rebuilds the list view from request parameters.
func (s *Server) stateFromQuery(q url.Values) *view.State {
	v := view.New(s.Logger)
	v.SetFilter(q.Get("status"))
	if id, err := strconv.ParseInt(q.Get("expanded"), 10, 64); err == nil && id > 0 {
		v.Toggle(id)
	}
	if q.Get("form") == "1" {
		v.ShowForm()
	}
	return v
}

func (s *Server) indexData(v *view.State, values url.Values) *indexData {
	return &indexData{
		PageData:   PageData{Title: "Lost & Found"},
		Filter:     v.Filter(),
		Statuses:   model.Statuses,
		ExpandedID: v.ExpandedID(),
		Form:       v.FormVisible(),
		Values:     values,
	}
}
