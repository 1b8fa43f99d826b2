package api

import (
	"net/http"
	"strings"

	"github.com/example/learnpath/pkg/models"
)

type studyGroupRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
	CourseID    int64  `json:"course_id" validate:"required,gt=0"`
}

type studyGroupDetail struct {
	*models.StudyGroup
	Members []models.StudyGroupMember `json:"members"`
}

type postRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	Content  string `json:"content" validate:"required"`
	CourseID int64  `json:"course_id" validate:"required,gt=0"`
}

type replyRequest struct {
	Content string `json:"content" validate:"required"`
}

type postDetail struct {
	*models.ForumPost
	Replies []models.ForumReply `json:"replies"`
}

func (s *Server) listStudyGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.groups.GetAll(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if groups == nil {
		groups = []models.StudyGroup{}
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) createStudyGroup(w http.ResponseWriter, r *http.Request) {
	var req studyGroupRequest
	if !s.decode(w, r, &req) {
		return
	}
	if _, err := s.courses.GetByID(r.Context(), req.CourseID); err != nil {
		s.fail(w, r, err)
		return
	}

	group := &models.StudyGroup{
		Name:        s.sanitizer.Sanitize(req.Name),
		Description: s.sanitizer.Sanitize(req.Description),
		CourseID:    req.CourseID,
	}
	if err := s.groups.Create(r.Context(), group, UserIDFromContext(r.Context())); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

func (s *Server) getStudyGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	group, err := s.groups.GetByID(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	members, err := s.groups.Members(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if members == nil {
		members = []models.StudyGroupMember{}
	}
	writeJSON(w, http.StatusOK, studyGroupDetail{StudyGroup: group, Members: members})
}

func (s *Server) joinStudyGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if _, err := s.groups.GetByID(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.groups.Join(r.Context(), id, UserIDFromContext(r.Context())); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.forum.ListPosts(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if posts == nil {
		posts = []models.ForumPost{}
	}
	writeJSON(w, http.StatusOK, posts)
}

func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if !s.decode(w, r, &req) {
		return
	}
	content := strings.TrimSpace(s.sanitizer.Sanitize(req.Content))
	if content == "" {
		writeError(w, http.StatusBadRequest, "content is empty after sanitization")
		return
	}
	if _, err := s.courses.GetByID(r.Context(), req.CourseID); err != nil {
		s.fail(w, r, err)
		return
	}

	post := &models.ForumPost{
		Title:    s.sanitizer.Sanitize(req.Title),
		Content:  content,
		UserID:   UserIDFromContext(r.Context()),
		CourseID: req.CourseID,
	}
	if err := s.forum.CreatePost(r.Context(), post); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (s *Server) getPost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	post, err := s.forum.GetPost(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	replies, err := s.forum.Replies(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if replies == nil {
		replies = []models.ForumReply{}
	}
	writeJSON(w, http.StatusOK, postDetail{ForumPost: post, Replies: replies})
}

func (s *Server) createReply(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req replyRequest
	if !s.decode(w, r, &req) {
		return
	}
	content := strings.TrimSpace(s.sanitizer.Sanitize(req.Content))
	if content == "" {
		writeError(w, http.StatusBadRequest, "content is empty after sanitization")
		return
	}
	if _, err := s.forum.GetPost(r.Context(), postID); err != nil {
		s.fail(w, r, err)
		return
	}

	reply := &models.ForumReply{
		Content: content,
		UserID:  UserIDFromContext(r.Context()),
		PostID:  postID,
	}
	if err := s.forum.CreateReply(r.Context(), reply); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, reply)
}
