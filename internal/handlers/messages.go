package handlers

// Menu shortcuts mirror the commands for clients without command support
const (
	MenuPost    = "📝 Post"
	MenuFeed    = "📰 Feed"
	MenuProfile = "👤 Profile"
	MenuStats   = "📊 Stats"
)

const (
	msgWelcome = "Welcome to the Mini Blog bot!\n\n" +
		"Commands:\n" +
		"/post - Create a new post\n" +
		"/feed - Browse posts\n" +
		"/profile - View your profile\n" +
		"/user @username - View another user's profile\n" +
		"/stats - Bot statistics"
	msgUnknownInput = "I didn't understand that. Use the menu below or /help."

	msgAskPostText     = "Send the text of your new post (or /cancel):"
	msgPostCreated     = "Post published successfully!"
	msgTextOnly        = "Only text posts are supported."
	msgStillComposing  = "You are writing a post. Send its text, or /cancel to stop."
	msgPostCancelled   = "Post creation cancelled."
	msgNothingToCancel = "Nothing to cancel."
	msgComposeMode     = "Switched to post creation mode"

	msgNoPosts   = "There are no posts yet."
	msgLikeAdded = "Like added!"

	msgUserUsage     = "To open a user's profile: /user @username"
	msgSubscribed    = "Subscribed successfully!"
	msgUnsubscribed  = "Unsubscribed!"
	unknownUsername  = "unknown"
	recentPostsLimit = 5
	previewLength    = 50

	dateLayout = "2006-01-02"
)

// Notices for domain errors, shown by the router
const (
	NoticeInvalidInput      = "The post text must not be empty and must fit in one message."
	NoticeUserNotFound      = "User not found."
	NoticePostNotFound      = "Post not found!"
	NoticeAlreadyLiked      = "You have already liked this post!"
	NoticeAlreadySubscribed = "You are already subscribed!"
	NoticeSelfSubscription  = "You cannot subscribe to yourself!"
	NoticeInvalidAction     = "This button is no longer supported."
	NoticeGenericFailure    = "Something went wrong! Please try again."
)

// MainMenu is the reply keyboard shown on /start
func MainMenu() [][]string {
	return [][]string{
		{MenuPost, MenuFeed},
		{MenuProfile, MenuStats},
	}
}
