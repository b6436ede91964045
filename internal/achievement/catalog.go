package achievement

// DefaultCatalog is the single canonical achievement list. The postgres
// store reads the achievements table instead; the memory store is seeded
// from this slice.
var DefaultCatalog = []*Definition{
	{ID: "first-clip", Name: "First Clip", Description: "Post your first clip", Category: CategoryGeneral, TargetValue: 1, XPReward: 50, TokenReward: 10},
	{ID: "clip-collector", Name: "Clip Collector", Description: "Post 25 clips", Category: CategoryGeneral, TargetValue: 25, XPReward: 250, TokenReward: 40},
	{ID: "daily-login-7", Name: "Regular", Description: "Log in 7 days in a row", Category: CategoryDaily, TargetValue: 7, XPReward: 100, TokenReward: 20},
	{ID: "daily-login-30", Name: "Resident", Description: "Log in 30 days in a row", Category: CategoryDaily, TargetValue: 30, XPReward: 400, TokenReward: 80},
	{ID: "trophy-hunter", Name: "Trophy Hunter", Description: "Earn 10 trophies on your clips", Category: CategoryTrophy, TargetValue: 10, XPReward: 200, TokenReward: 30},
	{ID: "first-stream", Name: "Going Live", Description: "Start your first stream", Category: CategoryStreaming, TargetValue: 1, XPReward: 75, TokenReward: 15},
	{ID: "stream-marathon", Name: "Marathon Runner", Description: "Stream for 24 total hours", Category: CategoryStreaming, TargetValue: 24, XPReward: 350, TokenReward: 60},
	{ID: "first-follower", Name: "Somebody Likes You", Description: "Gain your first follower", Category: CategorySocial, TargetValue: 1, XPReward: 25, TokenReward: 5},
	{ID: "squad-100", Name: "Squad Leader", Description: "Gain 100 followers", Category: CategorySocial, TargetValue: 100, XPReward: 500, TokenReward: 100},
	{ID: "message-50", Name: "Chatterbox", Description: "Send 50 direct messages", Category: CategorySocial, TargetValue: 50, XPReward: 100, TokenReward: 15},
	{ID: "night-owl", Name: "Night Owl", Description: "Post a clip between 2AM and 5AM", Category: CategorySpecial, TargetValue: 1, XPReward: 60, TokenReward: 10},
	{ID: "game-master", Name: "Game Master", Description: "Post clips from 10 different games", Category: CategoryGaming, TargetValue: 10, XPReward: 300, TokenReward: 50},
}
