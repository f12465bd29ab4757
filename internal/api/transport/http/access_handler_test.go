package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillforge/platform/internal/access"
	apimw "github.com/skillforge/platform/internal/api/middleware"
	catalogDomain "github.com/skillforge/platform/internal/catalog/domain"
	identityDomain "github.com/skillforge/platform/internal/identity/domain"
	"github.com/skillforge/platform/internal/platform/logger"
)

// stubTokenVerifier lets tests install an arbitrary identity.
type stubTokenVerifier struct {
	identity identityDomain.Identity
	err      error
}

func (s *stubTokenVerifier) VerifyToken(_ string) (identityDomain.Identity, error) {
	return s.identity, s.err
}

// stubChapterStore serves a single chapter by ID; everything else is absent.
// The embedded interface covers the methods these tests never reach.
type stubChapterStore struct {
	catalogDomain.ChapterRepository
	chapter *catalogDomain.Chapter
}

func (s *stubChapterStore) GetByID(_ context.Context, id uuid.UUID) (*catalogDomain.Chapter, error) {
	if s.chapter != nil && s.chapter.ID == id {
		return s.chapter, nil
	}
	return nil, catalogDomain.ErrNotFound
}

func newAccessTestRouter(verifier apimw.TokenVerifier, chapters catalogDomain.ChapterRepository) chi.Router {
	// Anonymous evaluations and admin course evaluations short-circuit
	// before any repository access, so the remaining stores can be nil here.
	evaluator := access.NewEvaluator(nil, nil, chapters, nil, nil, logger.Discard())
	r := chi.NewRouter()
	r.Use(apimw.Authenticate(verifier, logger.Discard()))
	NewAccessHandler(evaluator, logger.Discard()).RegisterRoutes(r)
	return r
}

func getAccess(t *testing.T, router chi.Router, path, token string) (int, AccessResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var res AccessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return rec.Code, res
}

func adminVerifier() *stubTokenVerifier {
	return &stubTokenVerifier{
		identity: identityDomain.Identity{Role: identityDomain.RoleAdmin},
	}
}

func TestAccessEndpointsAlwaysReturn200(t *testing.T) {
	courseID := uuid.New()

	t.Run("anonymous gets denial, not an error", func(t *testing.T) {
		router := newAccessTestRouter(&stubTokenVerifier{}, nil)
		status, res := getAccess(t, router, "/access/course/"+courseID.String(), "")
		assert.Equal(t, http.StatusOK, status)
		assert.False(t, res.HasAccess)
		assert.False(t, res.IsOwner)
	})

	t.Run("admin has access and ownership on a course", func(t *testing.T) {
		router := newAccessTestRouter(adminVerifier(), nil)
		status, res := getAccess(t, router, "/access/course/"+courseID.String(), "admin-token")
		assert.Equal(t, http.StatusOK, status)
		assert.True(t, res.HasAccess)
		assert.True(t, res.IsOwner)
	})

	t.Run("admin chapter response carries the course id", func(t *testing.T) {
		chapterID := uuid.New()
		chapters := &stubChapterStore{chapter: &catalogDomain.Chapter{ID: chapterID, CourseID: courseID}}
		router := newAccessTestRouter(adminVerifier(), chapters)

		status, res := getAccess(t, router, "/access/chapter/"+chapterID.String(), "admin-token")

		assert.Equal(t, http.StatusOK, status)
		assert.True(t, res.HasAccess)
		assert.True(t, res.IsOwner)
		require.NotNil(t, res.CourseID)
		assert.Equal(t, courseID, *res.CourseID)
	})

	t.Run("missing chapter denies admins too", func(t *testing.T) {
		router := newAccessTestRouter(adminVerifier(), &stubChapterStore{})

		status, res := getAccess(t, router, "/access/chapter/"+uuid.NewString(), "admin-token")

		assert.Equal(t, http.StatusOK, status)
		assert.False(t, res.HasAccess)
		assert.False(t, res.IsOwner)
		assert.Nil(t, res.CourseID)
	})

	t.Run("garbage id is a denial, not a 400", func(t *testing.T) {
		router := newAccessTestRouter(&stubTokenVerifier{}, nil)
		status, res := getAccess(t, router, "/access/course/not-a-uuid", "")
		assert.Equal(t, http.StatusOK, status)
		assert.False(t, res.HasAccess)
	})
}
