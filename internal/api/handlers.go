package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mmcdole/showtrack/internal/domain"
	"github.com/mmcdole/showtrack/internal/seasons"
)

// addShowRequest is the body of POST /shows. One of TmdbID or Title is
// required.
type addShowRequest struct {
	TmdbID int64  `json:"tmdb_id"`
	Title  string `json:"title"`
}

// imagesResponse adds full URLs to the stored image paths.
type imagesResponse struct {
	ShowID int64           `json:"show_id"`
	Images []imageResponse `json:"images"`
}

type imageResponse struct {
	domain.ShowImage
	URL string `json:"url"`
}

func (s *Server) listShows(c *gin.Context) {
	shows, err := s.app.Queries.ListShows(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	if shows == nil {
		shows = []domain.Show{}
	}
	c.JSON(http.StatusOK, shows)
}

func (s *Server) addShow(c *gin.Context) {
	var req addShowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx := c.Request.Context()
	var (
		show domain.Show
		err  error
	)
	switch {
	case req.TmdbID > 0:
		show, err = s.app.Library.AddShow(ctx, req.TmdbID)
	case strings.TrimSpace(req.Title) != "":
		show, err = s.app.Library.AddShowByTitle(ctx, req.Title)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "tmdb_id or title is required"})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, show)
}

func (s *Server) getShow(c *gin.Context) {
	id, err := showID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	show, err := s.app.Queries.GetShow(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, show)
}

func (s *Server) removeShow(c *gin.Context) {
	id, err := showID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.app.Library.RemoveShow(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) searchShows(c *gin.Context) {
	results, err := s.app.Queries.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if results == nil {
		c.JSON(http.StatusOK, []any{})
		return
	}
	c.JSON(http.StatusOK, results)
}

func (s *Server) getImages(c *gin.Context) {
	id, err := showID(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	ctx := c.Request.Context()
	var images domain.ShowImages
	if c.Query("refresh") == "true" {
		images, err = s.app.ShowImages.Refresh(ctx, id)
	} else {
		images, err = s.app.ShowImages.Get(ctx, id)
	}
	if err != nil {
		s.fail(c, err)
		return
	}

	size := c.DefaultQuery("size", "original")
	resp := imagesResponse{ShowID: images.ShowID, Images: make([]imageResponse, len(images.Images))}
	for i, img := range images.Images {
		resp.Images[i] = imageResponse{ShowImage: img, URL: s.app.TMDB.ImageURL(img.Path, size)}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) clearImages(c *gin.Context) {
	id, err := showID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	ctx := c.Request.Context()
	if err := s.app.ShowImages.Clear(ctx, id); err != nil {
		s.fail(c, err)
		return
	}
	if err := s.app.Requests.Invalidate(ctx, domain.RequestShowImages, id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) getSeasons(c *gin.Context) {
	id, err := showID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	result, err := s.app.FetchSeasons.Run(c.Request.Context(), seasons.Params{
		ShowID:    id,
		ForceLoad: c.Query("force") == "true",
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) popular(c *gin.Context) {
	page, err := pageParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	shows, err := s.app.Library.Popular(c.Request.Context(), page)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"page": page, "results": nonNil(shows)})
}

func (s *Server) searchRemote(c *gin.Context) {
	page, err := pageParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	shows, err := s.app.Library.SearchRemote(c.Request.Context(), c.Query("q"), page)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"page": page, "results": nonNil(shows)})
}

func pageParam(c *gin.Context) (int, error) {
	raw := c.DefaultQuery("page", "1")
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, errors.New("page must be a positive integer")
	}
	return page, nil
}

func nonNil(shows []domain.Show) []domain.Show {
	if shows == nil {
		return []domain.Show{}
	}
	return shows
}
