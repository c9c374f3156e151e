package community

import (
	"net/http"
	"strconv"

	"community-forum/internal/errors"
	"community-forum/internal/middleware"
	"community-forum/internal/model"
	"community-forum/internal/page"
	"community-forum/internal/service"
	"community-forum/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CommunityHandler struct {
	communityService *service.CommunityService
}

func NewCommunityHandler(communityService *service.CommunityService) *CommunityHandler {
	return &CommunityHandler{
		communityService: communityService,
	}
}

type createCommunityRequest struct {
	Name        string `json:"name" binding:"required,notblank,max=64"`
	Description string `json:"description" binding:"max=500"`
	Info        string `json:"info" binding:"max=2000"`
}

type postRequest struct {
	Title   string `json:"title" binding:"required,notblank,max=200"`
	Content string `json:"content" binding:"required,notblank"`
}

type commentRequest struct {
	Content string `json:"content" binding:"required,notblank"`
}

type reactionRequest struct {
	Type model.ReactionType `json:"type" binding:"required,oneof=like dislike"`
}

type leaveRequest struct {
	ConfirmName string `json:"confirm_name"`
}

// loadPage 为当前会话构建并加载页面。社区不存在时写入 404 并返回 false。
func (h *CommunityHandler) loadPage(c *gin.Context) (*page.PostsPage, bool) {
	p := page.New(h.communityService, middleware.GetSession(c), c.Param("name"))
	p.FilterByCreator, _ = strconv.ParseBool(c.Query("filter_by_creator"))
	p.SortOrder = service.ParseSortOrder(c.Query("sort"))

	p.Load(c.Request.Context())
	if p.NotFound() {
		errors.HandleError(c, errors.New(errors.ErrCommunityNotFound, p.Error))
		return nil, false
	}
	return p, true
}

func respond(c *gin.Context, p *page.PostsPage) {
	if p.Error != "" {
		util.Logger.Debug("页面操作未成功",
			zap.String("community", c.Param("name")),
			zap.String("path", c.FullPath()),
			zap.String("error", p.Error))
	}
	errors.HandleSuccess(c, p.Snapshot(), "")
}

func bindError(c *gin.Context, err error) {
	errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
}

// CreateCommunity 创建社区，调用者成为 creator
func (h *CommunityHandler) CreateCommunity(c *gin.Context) {
	var req createCommunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	community := &model.Community{
		Name:        req.Name,
		Description: req.Description,
		Info:        req.Info,
	}
	if err := h.communityService.CreateCommunity(c.Request.Context(), community, middleware.GetSession(c).CurrentUser); err != nil {
		util.Logger.Error("创建社区失败", zap.String("name", req.Name), zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code": 201,
		"data": community,
	})
}

func (h *CommunityHandler) GetPosts(c *gin.Context) {
	p, ok := h.loadPage(c)
	if !ok {
		return
	}
	respond(c, p)
}

func (h *CommunityHandler) CreatePost(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	p, ok := h.loadPage(c)
	if !ok {
		return
	}

	p.OpenCreateDialog()
	p.SetNewPost(req.Title, req.Content)
	p.CreatePost(c.Request.Context())
	respond(c, p)
}

func (h *CommunityHandler) UpdatePost(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	p, ok := h.loadPage(c)
	if !ok {
		return
	}

	if p.OpenEditDialog(c.Param("id")) {
		p.SetEditPost(req.Title, req.Content)
		p.SavePost(c.Request.Context())
	}
	respond(c, p)
}

func (h *CommunityHandler) DeletePost(c *gin.Context) {
	p, ok := h.loadPage(c)
	if !ok {
		return
	}
	p.DeletePost(c.Request.Context(), c.Param("id"))
	respond(c, p)
}

func (h *CommunityHandler) AddComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	p, ok := h.loadPage(c)
	if !ok {
		return
	}

	p.OpenCommentDialog(c.Param("id"))
	p.SetNewComment(req.Content)
	p.AddComment(c.Request.Context())
	respond(c, p)
}

func (h *CommunityHandler) DeleteComment(c *gin.Context) {
	p, ok := h.loadPage(c)
	if !ok {
		return
	}
	p.DeleteComment(c.Request.Context(), c.Param("id"))
	respond(c, p)
}

func (h *CommunityHandler) React(c *gin.Context) {
	var req reactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	p, ok := h.loadPage(c)
	if !ok {
		return
	}
	p.React(c.Request.Context(), c.Param("id"), req.Type)
	respond(c, p)
}

func (h *CommunityHandler) Join(c *gin.Context) {
	p, ok := h.loadPage(c)
	if !ok {
		return
	}
	p.JoinCommunity(c.Request.Context())
	respond(c, p)
}

func (h *CommunityHandler) Leave(c *gin.Context) {
	var req leaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	p, ok := h.loadPage(c)
	if !ok {
		return
	}

	p.OpenLeaveDialog()
	p.SetConfirmName(req.ConfirmName)
	p.LeaveCommunity(c.Request.Context())
	respond(c, p)
}

// RegisterRoutes 注册社区相关路由。limit 只作用于写操作，可以为 nil。
func (h *CommunityHandler) RegisterRoutes(api *gin.RouterGroup, limit gin.HandlerFunc) {
	session := middleware.SessionMiddleware(h.communityService)
	write := []gin.HandlerFunc{session, middleware.RequireUser()}
	if limit != nil {
		write = append(write, limit)
	}
	withWrite := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, write...), handler)
	}

	api.POST("/communities", withWrite(h.CreateCommunity)...)

	c := api.Group("/c/:name")
	{
		c.GET("/posts", session, h.GetPosts)
		c.POST("/posts", withWrite(h.CreatePost)...)
		c.PUT("/posts/:id", withWrite(h.UpdatePost)...)
		c.DELETE("/posts/:id", withWrite(h.DeletePost)...)
		c.POST("/posts/:id/comments", withWrite(h.AddComment)...)
		c.DELETE("/comments/:id", withWrite(h.DeleteComment)...)
		c.POST("/posts/:id/reactions", withWrite(h.React)...)
		c.POST("/join", withWrite(h.Join)...)
		c.POST("/leave", withWrite(h.Leave)...)
	}
}
