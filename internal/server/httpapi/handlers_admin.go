package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/gorilla/mux"
)

func userID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil && id > 0
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.admin.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userResponse{
			ID:        u.ID,
			Email:     u.Email,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Mobile:    u.Mobile,
			Role:      string(u.Role),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(s.opts.PhoneRegion); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", common.ErrValidation, err))
		return
	}
	mobile, _ := normalizeMobile(req.Mobile, s.opts.PhoneRegion)

	_, err := s.admin.Create(r.Context(), services.CreateUserInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Mobile:    mobile,
		Role:      req.Role,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeMessage(w, http.StatusCreated, "User created")
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	var req updateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(s.opts.PhoneRegion); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", common.ErrValidation, err))
		return
	}

	in := services.UpdateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  nonEmpty(req.Password),
		Role:      nonEmpty(req.Role),
	}
	if req.Mobile != nil {
		mobile, _ := normalizeMobile(*req.Mobile, s.opts.PhoneRegion)
		in.Mobile = &mobile
	}

	if err := s.admin.Update(r.Context(), id, in); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeMessage(w, http.StatusOK, "Updated")
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	if err := s.admin.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeMessage(w, http.StatusOK, "Deleted")
}

func nonEmpty(p *string) *string {
	if p == nil || *p == "" {
		return nil
	}
	return p
}
