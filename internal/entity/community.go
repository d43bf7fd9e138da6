package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CommunityTypeProfessional = "professional"
	CommunityTypeStudent      = "student"

	VisibilityPublic     = "public"
	VisibilityPrivate    = "private"
	VisibilityUnlisted   = "unlisted"
	VisibilityInviteOnly = "invite_only"

	JoinPolicyOpen        = "open"
	JoinPolicyRequest     = "request"
	JoinPolicyInvite      = "invite"
	JoinPolicyApplication = "application"

	CommunityStatusDraft         = "draft"
	CommunityStatusPendingReview = "pending_review"
	CommunityStatusPublished     = "published"
	CommunityStatusRejected      = "rejected"
	CommunityStatusSuspended     = "suspended"
	CommunityStatusArchived      = "archived"
)

// Community is the central aggregate. ActiveMembersCount is denormalized and
// mutated only by the join/leave handlers (plus the background reconciler).
type Community struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ParentID *uuid.UUID `gorm:"type:uuid;index" json:"parent_id,omitempty"` // reserved, no cascade semantics

	Name        string `gorm:"size:150;not null" json:"name"`
	Slug        string `gorm:"size:170;uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`

	Type       string `gorm:"size:20;not null" json:"type"`
	Visibility string `gorm:"size:20;not null;default:public" json:"visibility"`
	JoinPolicy string `gorm:"size:20;not null;default:open" json:"join_policy"`
	Status     string `gorm:"size:20;not null;default:published;index" json:"status"`

	OwnerID   uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	CreatedBy uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`

	ActiveMembersCount int  `gorm:"default:0" json:"active_members_count"`
	MaxMembers         *int `json:"max_members,omitempty"`

	AvatarURL *string `gorm:"type:text" json:"avatar_url,omitempty"`
	BannerURL *string `gorm:"type:text" json:"banner_url,omitempty"`

	FAQs                  JSON `gorm:"type:jsonb" json:"faqs,omitempty"`
	VerificationQuestions JSON `gorm:"type:jsonb" json:"verification_questions,omitempty"`
	CustomTheme           JSON `gorm:"type:jsonb" json:"custom_theme,omitempty"`
	Settings              JSON `gorm:"type:jsonb" json:"settings,omitempty"`
	RankingMetrics        JSON `gorm:"type:jsonb" json:"ranking_metrics,omitempty"`

	// Gamification counters, set at creation and never recomputed in scope.
	EngagementScore     int `gorm:"default:0" json:"engagement_score"`
	PostsCount          int `gorm:"default:0" json:"posts_count"`
	WeeklyActiveMembers int `gorm:"default:0" json:"weekly_active_members"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Community) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}

const (
	MemberStatusActive    = "active"
	MemberStatusPending   = "pending"
	MemberStatusSuspended = "suspended"
	MemberStatusBanned    = "banned"
	MemberStatusLeft      = "left"

	MemberRankNewbie  = "newbie"
	MemberRankRegular = "regular"
	MemberRankVeteran = "veteran"
	MemberRankExpert  = "expert"
	MemberRankLegend  = "legend"
)

type CommunityMember struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CommunityID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_community_user,priority:1" json:"community_id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_community_user,priority:2" json:"user_id"`
	User        *User     `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`

	Status      string `gorm:"size:20;not null;default:active" json:"status"`
	MemberRank  string `gorm:"size:20;not null;default:newbie" json:"member_rank"`
	MemberLevel int    `gorm:"default:1" json:"member_level"`
	MemberXP    int    `gorm:"default:0" json:"member_xp"`

	IsMuted   bool       `gorm:"default:false" json:"is_muted"`
	MutedAt   *time.Time `json:"muted_at,omitempty"`
	IsBanned  bool       `gorm:"default:false" json:"is_banned"`
	BannedAt  *time.Time `json:"banned_at,omitempty"`
	BanReason *string    `gorm:"type:text" json:"ban_reason,omitempty"`

	JoinedAt  time.Time `gorm:"autoCreateTime" json:"joined_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (m *CommunityMember) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID, err = uuid.NewV7()
	}
	return
}

// CommunityTag pivot. Every insert/delete must symmetrically adjust the
// referenced Tag's UsageCount.
type CommunityTag struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CommunityID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_community_tag,priority:1" json:"community_id"`
	TagID       uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_community_tag,priority:2" json:"tag_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ct *CommunityTag) BeforeCreate(tx *gorm.DB) (err error) {
	if ct.ID == uuid.Nil {
		ct.ID, err = uuid.NewV7()
	}
	return
}

// CommunityTopic pivot. Write paths keep a single topic per community
// (update replaces rather than adds).
type CommunityTopic struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CommunityID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_community_topic,priority:1" json:"community_id"`
	TopicID     uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_community_topic,priority:2" json:"topic_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ct *CommunityTopic) BeforeCreate(tx *gorm.DB) (err error) {
	if ct.ID == uuid.Nil {
		ct.ID, err = uuid.NewV7()
	}
	return
}
