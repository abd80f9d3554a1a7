package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
)

const (
	maxJSONBody   = 1 << 20
	maxUploadBody = 10 << 20
)

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body", common.ErrValidation)
	}
	return nil
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	var upload *services.Upload

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data", "application/x-www-form-urlencoded":
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
		if err := r.ParseMultipartForm(maxUploadBody); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			writeMessage(w, http.StatusBadRequest, "invalid form")
			return
		}
		req = registerRequest{
			Email:     r.FormValue("email"),
			FirstName: r.FormValue("first_name"),
			LastName:  r.FormValue("last_name"),
			Password:  r.FormValue("password"),
			Mobile:    r.FormValue("mobile"),
		}
		if r.MultipartForm != nil {
			file, hdr, err := r.FormFile("profile_pic")
			switch {
			case err == nil:
				defer file.Close()
				upload = &services.Upload{Filename: hdr.Filename, Body: file}
			case !errors.Is(err, http.ErrMissingFile):
				writeMessage(w, http.StatusBadRequest, "invalid profile_pic")
				return
			}
		}
	default:
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	if err := req.Validate(s.opts.PhoneRegion); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", common.ErrValidation, err))
		return
	}
	mobile, _ := normalizeMobile(req.Mobile, s.opts.PhoneRegion)

	token, err := s.registration.Register(r.Context(), services.RegisterInput{
		Email:      req.Email,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Password:   req.Password,
		Mobile:     mobile,
		ProfilePic: upload,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{Message: "OTP sent", Token: token})
}

func (s *Server) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", common.ErrValidation, err))
		return
	}

	if err := s.registration.Verify(r.Context(), req.Token, req.OTP); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeMessage(w, http.StatusCreated, "Registered successfully")
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Missing credentials")
		return
	}

	res, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		User:         loginUser{Email: res.Email, Role: string(res.Role)},
	})
}

// refresh runs behind authenticate, so the bearer token is present.
func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	token, _ := bearerToken(r)

	access, err := s.auth.Refresh(r.Context(), token)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"access_token": access})
}
