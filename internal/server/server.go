package server

import (
	"context"
	"log"
	"strings"
	"time"

	"anoa.com/communityhub/internal/config"
	"anoa.com/communityhub/internal/middleware"
	"anoa.com/communityhub/pkg/storage"

	communityHttp "anoa.com/communityhub/internal/modules/community/delivery/http"
	communityRepo "anoa.com/communityhub/internal/modules/community/repository"
	communityService "anoa.com/communityhub/internal/modules/community/service"

	followHttp "anoa.com/communityhub/internal/modules/follow/delivery/http"
	followRepo "anoa.com/communityhub/internal/modules/follow/repository"
	followService "anoa.com/communityhub/internal/modules/follow/service"

	interestHttp "anoa.com/communityhub/internal/modules/interest/delivery/http"
	interestRepo "anoa.com/communityhub/internal/modules/interest/repository"
	interestService "anoa.com/communityhub/internal/modules/interest/service"

	notifHttp "anoa.com/communityhub/internal/modules/notification/delivery/http"
	notifRepo "anoa.com/communityhub/internal/modules/notification/repository"
	notifService "anoa.com/communityhub/internal/modules/notification/service"

	profileHttp "anoa.com/communityhub/internal/modules/profile/delivery/http"
	profileRepo "anoa.com/communityhub/internal/modules/profile/repository"
	profileService "anoa.com/communityhub/internal/modules/profile/service"

	searchHttp "anoa.com/communityhub/internal/modules/search/delivery/http"
	searchService "anoa.com/communityhub/internal/modules/search/service"

	tagHttp "anoa.com/communityhub/internal/modules/tag/delivery/http"
	tagRepo "anoa.com/communityhub/internal/modules/tag/repository"
	tagService "anoa.com/communityhub/internal/modules/tag/service"

	topicHttp "anoa.com/communityhub/internal/modules/topic/delivery/http"
	topicRepo "anoa.com/communityhub/internal/modules/topic/repository"
	topicService "anoa.com/communityhub/internal/modules/topic/service"

	userHttp "anoa.com/communityhub/internal/modules/user/delivery/http"
	userRepo "anoa.com/communityhub/internal/modules/user/repository"
	userService "anoa.com/communityhub/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
	cancel      context.CancelFunc
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	users := userRepo.NewUserRepository(db)

	var imageStorage storage.ImageStorage
	if cfg.CloudinaryCloudName != "" {
		var err error
		imageStorage, err = storage.NewCloudinaryStorage()
		if err != nil {
			log.Fatalf("failed to initialize cloudinary storage: %v", err)
		}
	} else {
		log.Println("WARNING: cloudinary is not configured, image uploads are disabled")
	}

	var searchSvc searchService.SearchService
	if cfg.MeiliSearchHost != "" {
		meiliClient := meilisearch.New(cfg.MeiliSearchHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
		searchSvc = searchService.NewSearchService(meiliClient)
	} else {
		log.Println("WARNING: meilisearch is not configured, community search is disabled")
	}

	authSvc := userService.NewAuthService(users)
	authHandler := userHttp.NewAuthHandler(authSvc)

	interests := interestRepo.NewInterestRepository(db)
	interestSvc := interestService.NewInterestService(interests)
	interestHandler := interestHttp.NewInterestHandler(interestSvc)

	topics := topicRepo.NewTopicRepository(db)
	topicSvc := topicService.NewTopicService(topics, interests)
	topicHandler := topicHttp.NewTopicHandler(topicSvc)

	tags := tagRepo.NewTagRepository(db)
	tagSvc := tagService.NewTagService(tags, topics)
	tagHandler := tagHttp.NewTagHandler(tagSvc)

	notifications := notifRepo.NewNotificationRepository(db)
	notificationSvc := notifService.NewNotificationService(notifications, users, redisClient)
	notificationHandler := notifHttp.NewNotificationHandler(notificationSvc, redisClient)

	communities := communityRepo.NewCommunityRepository(db)
	members := communityRepo.NewMemberRepository(db)
	communitySvc := communityService.NewCommunityService(
		communities, members, topics, tags,
		imageStorage, redisClient, searchSvc, notificationSvc,
		cfg.RateLimitCommunity,
	)
	communityHandler := communityHttp.NewCommunityHandler(communitySvc)

	follows := followRepo.NewFollowRepository(db)
	followSvc := followService.NewFollowService(follows, users, notificationSvc)
	followHandler := followHttp.NewFollowHandler(followSvc)

	profiles := profileRepo.NewProfileRepository(db)
	profileSvc := profileService.NewProfileService(profiles, users, follows, imageStorage)
	profileHandler := profileHttp.NewProfileHandler(profileSvc)

	searchHandler := searchHttp.NewSearchHandler(searchSvc)

	ctx, cancel := context.WithCancel(context.Background())
	go communityService.RunReconciler(ctx, communitySvc, cfg.ReconcileInterval)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	setupCORS(router, cfg.AllowedOrigins)

	authMiddleware := middleware.NewAuthMiddleware(users)

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// Discovery surface: readable anonymously, annotated for signed-in users.
	public := api.Group("")
	public.Use(authMiddleware.OptionalAuth())
	{
		public.GET("/interests", interestHandler.GetAll)
		public.GET("/interests/:id", interestHandler.GetByID)
		public.GET("/interests/:id/topics", topicHandler.GetByInterest)
		public.GET("/topics", topicHandler.GetAll)
		public.GET("/topics/:id", topicHandler.GetByID)
		public.GET("/topics/:id/communities", communityHandler.GetByTopic)
		public.GET("/tags", tagHandler.GetAll)
		public.GET("/tags/:id", tagHandler.GetByID)

		public.GET("/communities", communityHandler.List)
		public.GET("/communities/slug/:slug", communityHandler.GetBySlug)
		public.GET("/communities/:id/members", communityHandler.Members)
		public.GET("/search/communities", searchHandler.Communities)

		public.GET("/profiles/:username", profileHandler.GetByUsername)
	}

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.POST("/communities", communityHandler.Create)
		protected.PATCH("/communities/:id", communityHandler.Update)
		protected.POST("/communities/:id/join", communityHandler.Join)
		protected.POST("/communities/:id/leave", communityHandler.Leave)

		protected.POST("/follow/:userId", followHandler.Follow)
		protected.DELETE("/unfollow/:userId", followHandler.Unfollow)
		protected.POST("/follow/:userId/accept", followHandler.Accept)
		protected.POST("/block/:userId", followHandler.Block)
		protected.POST("/unblock/:userId", followHandler.Unblock)
		protected.GET("/followers", followHandler.Followers)
		protected.GET("/following", followHandler.Following)

		protected.GET("/profile/me", profileHandler.GetMe)
		protected.PATCH("/profile", profileHandler.Update)
		protected.PUT("/profile/avatar", profileHandler.UpdateAvatar)

		protected.GET("/notifications", notificationHandler.List)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.Stream)

		// Taxonomy administration
		admin := protected.Group("/admin")
		admin.Use(authMiddleware.RequireAdmin())
		{
			admin.POST("/interests", interestHandler.Create)
			admin.PATCH("/interests/:id", interestHandler.Update)
			admin.DELETE("/interests/:id", interestHandler.Delete)

			admin.POST("/topics", topicHandler.Create)
			admin.PATCH("/topics/:id", topicHandler.Update)
			admin.DELETE("/topics/:id", topicHandler.Delete)

			admin.POST("/tags", tagHandler.Create)
			admin.PATCH("/tags/:id", tagHandler.Update)
			admin.DELETE("/tags/:id", tagHandler.Delete)
		}
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
		cancel:      cancel,
	}
}

func (s *Server) Run(addr string) error {
	defer s.cancel()
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	origins := []string{"http://localhost:3000"}
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
