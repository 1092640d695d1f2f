package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"nutriplan/internal/grocery"
)

func (s *Server) handleListGroceryLists(c *gin.Context) {
	lists, err := s.lists.ListByUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		abortError(c, http.StatusInternalServerError, "failed to list grocery lists")
		return
	}
	if lists == nil {
		lists = []*grocery.StandaloneList{}
	}
	c.JSON(http.StatusOK, lists)
}

type createListRequest struct {
	Name  string       `json:"name" binding:"required"`
	Items grocery.List `json:"items"`
}

// handleCreateGroceryList creates a standalone list. Without items it
// starts with the empty default category set.
func (s *Server) handleCreateGroceryList(c *gin.Context) {
	var req createListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, "name is required")
		return
	}

	list := &grocery.StandaloneList{
		UserID: currentUserID(c),
		Name:   req.Name,
		Items:  req.Items,
	}
	if err := s.lists.Create(c.Request.Context(), list); err != nil {
		abortError(c, http.StatusInternalServerError, "failed to create grocery list")
		return
	}
	c.JSON(http.StatusCreated, list)
}

func (s *Server) handleGetGroceryList(c *gin.Context) {
	list, ok := s.loadList(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) handleUpdateGroceryList(c *gin.Context) {
	list, ok := s.loadList(c)
	if !ok {
		return
	}

	var update createListRequest
	if err := c.ShouldBindJSON(&update); err != nil {
		abortError(c, http.StatusBadRequest, "invalid grocery list payload")
		return
	}
	if update.Name != "" {
		list.Name = update.Name
	}
	if update.Items != nil {
		list.Items = update.Items
	}

	if err := s.lists.Update(c.Request.Context(), list); err != nil {
		abortError(c, http.StatusInternalServerError, "failed to update grocery list")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) handleDeleteGroceryList(c *gin.Context) {
	err := s.lists.Delete(c.Request.Context(), c.Param("id"), currentUserID(c))
	if errors.Is(err, grocery.ErrListNotFound) {
		abortError(c, http.StatusNotFound, "grocery list not found")
		return
	}
	if err != nil {
		abortError(c, http.StatusInternalServerError, "failed to delete grocery list")
		return
	}
	c.Status(http.StatusNoContent)
}

// handleEstimateGroceryList prices a standalone list from its own item
// names. Prices merge into existing items only; manual corrections are
// never clobbered.
func (s *Server) handleEstimateGroceryList(c *gin.Context) {
	list, ok := s.loadList(c)
	if !ok {
		return
	}

	var req estimateRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		abortError(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	keywords := grocery.KeywordsFromList(list.Items)
	if len(keywords) == 0 {
		c.JSON(http.StatusOK, gin.H{"list": list, "warning": "no items to price"})
		return
	}

	estimate, ok := s.fetchEstimate(c, keywords, req.People)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"list": list, "warning": "pricing unavailable, showing list without prices"})
		return
	}

	grocery.Merge(list.Items, estimate.PriceMap())

	if err := s.lists.Update(c.Request.Context(), list); err != nil {
		abortError(c, http.StatusInternalServerError, "failed to save priced list")
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (s *Server) handleSetListItemPrice(c *gin.Context) {
	list, ok := s.loadList(c)
	if !ok {
		return
	}

	var req itemPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, "category, name and price are required")
		return
	}

	if err := grocery.SetManualPrice(list.Items, req.Category, req.Name, req.Price); err != nil {
		abortError(c, http.StatusNotFound, err.Error())
		return
	}
	if err := s.lists.Update(c.Request.Context(), list); err != nil {
		abortError(c, http.StatusInternalServerError, "failed to save price")
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (s *Server) handleToggleListItem(c *gin.Context) {
	list, ok := s.loadList(c)
	if !ok {
		return
	}

	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, "category and name are required")
		return
	}

	if err := grocery.ToggleChecked(list.Items, req.Category, req.Name); err != nil {
		abortError(c, http.StatusNotFound, err.Error())
		return
	}
	if err := s.lists.Update(c.Request.Context(), list); err != nil {
		abortError(c, http.StatusInternalServerError, "failed to save list")
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (s *Server) loadList(c *gin.Context) (*grocery.StandaloneList, bool) {
	list, err := s.lists.Get(c.Request.Context(), c.Param("id"), currentUserID(c))
	if errors.Is(err, grocery.ErrListNotFound) {
		abortError(c, http.StatusNotFound, "grocery list not found")
		return nil, false
	}
	if err != nil {
		abortError(c, http.StatusInternalServerError, "failed to load grocery list")
		return nil, false
	}
	return list, true
}
