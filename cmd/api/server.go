package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"patient-journey/internal/auth"
	"patient-journey/internal/cache"
	"patient-journey/internal/census"
	"patient-journey/internal/config"
	"patient-journey/internal/export"
	"patient-journey/internal/ingest"
	"patient-journey/internal/journey"
	"patient-journey/internal/middleware"
	"patient-journey/internal/store"
	"patient-journey/internal/ws"
)

const (
	defaultPageSize = 100
	maxPageSize     = 1000
	dateLayout      = "2006-01-02"
)

// Server owns the HTTP surface. Everything it touches sits behind
// interfaces or nil-tolerant components so handler tests run without
// postgres or redis.
type Server struct {
	store    store.MessageStore
	auth     *auth.Service
	hub      *ws.Hub
	importer *ingest.Importer
	census   *census.Aggregator
	cache    *cache.CensusCache
	cfg      *config.Config
	logger   *zap.Logger
}

func NewServer(st store.MessageStore, authSvc *auth.Service, hub *ws.Hub, importer *ingest.Importer, censusCache *cache.CensusCache, cfg *config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		store:    st,
		auth:     authSvc,
		hub:      hub,
		importer: importer,
		census:   census.NewAggregator(logger),
		cache:    censusCache,
		cfg:      cfg,
		logger:   logger,
	}
}

func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /wish/", s.handleIngestWish)
	mux.HandleFunc("GET /wish/", s.handleListWish)
	mux.HandleFunc("POST /orline/", s.handleIngestOrline)
	mux.HandleFunc("GET /orline/", s.handleListOrline)

	mux.HandleFunc("GET /patients", s.handlePatients)
	mux.HandleFunc("GET /patient/{patient}/sejours", s.handleStaysByPatient)
	mux.HandleFunc("GET /messages-by-patient/{patient}", s.handleMessagesByPatient)
	mux.HandleFunc("GET /messages-by-patient-sejour", s.handleMessagesByStay)
	mux.HandleFunc("GET /journey/full/{patient}/{stay}", s.handleJourney)
	mux.HandleFunc("GET /patient-journey-gantt/{patient}", s.handleGantt)
	mux.HandleFunc("GET /census/occupancy", s.handleCensus)
	mux.HandleFunc("GET /hl7/export-all", s.handleExport)

	mux.HandleFunc("POST /process-all/", s.handleProcessAll)
	mux.HandleFunc("DELETE /clear-all/", middleware.RequireAuth(s.auth, s.handleClearAll))

	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("POST /login", s.handleLogin)

	if s.hub != nil {
		mux.HandleFunc("GET /ws", s.hub.HandleWS)
	}

	return mux
}

func (s *Server) handleIngestWish(w http.ResponseWriter, r *http.Request) {
	s.ingestOne(w, r, ingest.DialectWish)
}

func (s *Server) handleIngestOrline(w http.ResponseWriter, r *http.Request) {
	s.ingestOne(w, r, ingest.DialectORLine)
}

func (s *Server) ingestOne(w http.ResponseWriter, r *http.Request, dialect ingest.Dialect) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil || len(raw) == 0 {
		respondError(w, http.StatusBadRequest, "empty message body")
		return
	}
	id, err := s.importer.ImportMessage(r.Context(), string(raw), dialect)
	if err != nil {
		s.logger.Error("message ingest failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "message could not be stored")
		return
	}
	s.invalidateCensus(r)
	respondJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleListWish(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	records, err := s.store.ListWish(r.Context(), limit, offset)
	if err != nil {
		s.fail(w, "list wish messages", err)
		return
	}
	respondJSON(w, http.StatusOK, records)
}

func (s *Server) handleListOrline(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	records, err := s.store.ListOrline(r.Context(), limit, offset)
	if err != nil {
		s.fail(w, "list orline messages", err)
		return
	}
	respondJSON(w, http.StatusOK, records)
}

// handlePatients lists distinct patient identifiers. source selects the
// feed: wish, orline, both (union, default) or intersection.
func (s *Server) handlePatients(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("source")
	if source == "" {
		source = "both"
	}

	var wishIDs, orlineIDs []string
	var err error
	if source != "orline" {
		wishIDs, err = s.store.WishPatients(r.Context())
		if err != nil {
			s.fail(w, "list wish patients", err)
			return
		}
	}
	if source != "wish" {
		orlineIDs, err = s.store.OrlinePatients(r.Context())
		if err != nil {
			s.fail(w, "list orline patients", err)
			return
		}
	}

	var patients []string
	switch source {
	case "wish":
		patients = wishIDs
	case "orline":
		patients = orlineIDs
	case "both":
		patients = union(wishIDs, orlineIDs)
	case "intersection":
		patients = intersection(wishIDs, orlineIDs)
	default:
		respondError(w, http.StatusBadRequest, "source must be wish, orline, both or intersection")
		return
	}
	if patients == nil {
		patients = []string{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"source":   source,
		"patients": patients,
		"count":    len(patients),
	})
}

// handleStaysByPatient lists the stay identifiers known for one patient,
// for the dashboard's stay picker.
func (s *Server) handleStaysByPatient(w http.ResponseWriter, r *http.Request) {
	patient := r.PathValue("patient")
	stays, err := s.store.StaysByPatient(r.Context(), patient)
	if err != nil {
		s.fail(w, "stays by patient", err)
		return
	}
	if len(stays) == 0 {
		respondError(w, http.StatusNotFound, "no stays for patient")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"patient_id": patient,
		"sejours":    stays,
		"count":      len(stays),
	})
}

func (s *Server) handleMessagesByPatient(w http.ResponseWriter, r *http.Request) {
	patient := r.PathValue("patient")
	wish, err := s.store.WishByPatient(r.Context(), patient)
	if err != nil {
		s.fail(w, "wish messages by patient", err)
		return
	}
	orline, err := s.store.OrlineByPatient(r.Context(), patient)
	if err != nil {
		s.fail(w, "orline messages by patient", err)
		return
	}
	if len(wish) == 0 && len(orline) == 0 {
		respondError(w, http.StatusNotFound, "no messages for patient")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"patient_id": patient,
		"wish":       wish,
		"orline":     orline,
	})
}

func (s *Server) handleMessagesByStay(w http.ResponseWriter, r *http.Request) {
	patient := r.URL.Query().Get("patient_id")
	stay := r.URL.Query().Get("sejour_id")
	if patient == "" || stay == "" {
		respondError(w, http.StatusBadRequest, "patient_id and sejour_id are required")
		return
	}
	wish, err := s.store.WishByStay(r.Context(), patient, stay)
	if err != nil {
		s.fail(w, "wish messages by stay", err)
		return
	}
	orline, err := s.store.OrlineByStay(r.Context(), patient, stay)
	if err != nil {
		s.fail(w, "orline messages by stay", err)
		return
	}
	if len(wish) == 0 && len(orline) == 0 {
		respondError(w, http.StatusNotFound, "no messages for stay")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"patient_id": patient,
		"sejour_id":  stay,
		"wish":       wish,
		"orline":     orline,
	})
}

func (s *Server) handleJourney(w http.ResponseWriter, r *http.Request) {
	patient := r.PathValue("patient")
	stay := r.PathValue("stay")
	records, err := s.store.WishByStay(r.Context(), patient, stay)
	if err != nil {
		s.fail(w, "journey records", err)
		return
	}
	entries, err := journey.Build(records)
	if errors.Is(err, journey.ErrNoEvents) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.fail(w, "journey build", err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// handleGantt builds the journey across every stay of the patient, for
// the timeline chart view. Journeys are built stay by stay so each stay
// keeps its own admission bar.
func (s *Server) handleGantt(w http.ResponseWriter, r *http.Request) {
	patient := r.PathValue("patient")
	records, err := s.store.WishByPatient(r.Context(), patient)
	if err != nil {
		s.fail(w, "gantt records", err)
		return
	}
	entries, err := journey.BuildAll(records)
	if errors.Is(err, journey.ErrNoEvents) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.fail(w, "gantt build", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"patient_id": patient,
		"entries":    entries,
	})
}

func (s *Server) handleCensus(w http.ResponseWriter, r *http.Request) {
	start, end, err := censusRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	startKey := start.Format(dateLayout)
	endKey := end.Format(dateLayout)
	if s.cache != nil {
		if report := s.cache.Get(r.Context(), startKey, endKey); report != nil {
			respondJSON(w, http.StatusOK, report)
			return
		}
	}

	records, err := s.store.AllWish(r.Context())
	if err != nil {
		s.fail(w, "census records", err)
		return
	}
	events := census.FromWishRecords(records)
	report, err := s.census.Replay(events, start, end)
	if errors.Is(err, census.ErrNoEvents) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.fail(w, "census replay", err)
		return
	}
	if s.cache != nil {
		s.cache.Set(r.Context(), startKey, endKey, report)
	}
	respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	wish, err := s.store.AllWish(r.Context())
	if err != nil {
		s.fail(w, "export wish records", err)
		return
	}
	orline, err := s.store.AllOrline(r.Context())
	if err != nil {
		s.fail(w, "export orline records", err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="hl7_messages.xlsx"`)
	if err := export.WriteWorkbook(w, wish, orline); err != nil {
		s.logger.Error("workbook export failed", zap.Error(err))
	}
}

func (s *Server) handleProcessAll(w http.ResponseWriter, r *http.Request) {
	wishReport, err := s.importer.ImportFolder(r.Context(), s.cfg.WishFolder, ingest.DialectWish)
	if err != nil {
		s.fail(w, "wish folder import", err)
		return
	}
	orlineReport, err := s.importer.ImportFolder(r.Context(), s.cfg.OrlineFolder, ingest.DialectORLine)
	if err != nil {
		s.fail(w, "orline folder import", err)
		return
	}
	s.invalidateCensus(r)
	respondJSON(w, http.StatusOK, map[string]*ingest.Report{
		"wish":   wishReport,
		"orline": orlineReport,
	})
}

func (s *Server) handleClearAll(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Clear(r.Context()); err != nil {
		s.fail(w, "clear messages", err)
		return
	}
	s.invalidateCensus(r)
	s.logger.Info("message tables cleared", zap.String("user", middleware.User(r.Context())))
	respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	switch err := s.auth.Register(creds.Username, creds.Password); {
	case errors.Is(err, auth.ErrUserExists):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondError(w, http.StatusBadRequest, "username and password are required")
	case err != nil:
		s.fail(w, "register user", err)
	default:
		respondJSON(w, http.StatusCreated, map[string]string{"username": creds.Username})
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	token, err := s.auth.Login(creds.Username, creds.Password)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) invalidateCensus(r *http.Request) {
	if s.cache != nil {
		s.cache.Invalidate(r.Context())
	}
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	s.logger.Error(op, zap.Error(err))
	respondError(w, http.StatusInternalServerError, "internal error")
}

// censusRange reads start/end query dates, defaulting to the trailing
// 30 days. end must not precede start.
func censusRange(r *http.Request) (time.Time, time.Time, error) {
	start, end := census.DefaultRange(time.Now())
	q := r.URL.Query()
	if v := q.Get("start"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("start must be YYYY-MM-DD")
		}
		start = t
	}
	if v := q.Get("end"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("end must be YYYY-MM-DD")
		}
		end = t
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, errors.New("end precedes start")
	}
	return start, end, nil
}

func pagination(r *http.Request) (limit, offset int) {
	limit = defaultPageSize
	q := r.URL.Query()
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 && v <= maxPageSize {
		limit = v
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

func union(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, list := range [][]string{a, b} {
		for _, v := range list {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

func intersection(a, b []string) []string {
	inA := make(map[string]bool, len(a))
	for _, v := range a {
		inA[v] = true
	}
	var out []string
	for _, v := range b {
		if inA[v] {
			out = append(out, v)
		}
	}
	return out
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
