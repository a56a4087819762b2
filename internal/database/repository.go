package database

type NutriChatRepository interface {
	Ping() error
	CreateUser(params CreateUserParams) (User, error)
	GetUserById(id int) (User, error)
	GetUserByNombre(nombre string) (User, error)
	ListUsers() ([]User, error)
	DeleteUser(id int) error
	CreateMessage(params CreateMessageParams) (Message, error)
	BroadcastMessages() ([]Message, error)
	DirectMessages(userId, peerId int) ([]Message, error)
	CreateVideo(params CreateVideoParams) (Video, error)
	ListVideos(userId int) ([]Video, error)
	DeleteVideo(id int) error
	CreateGoal(params CreateGoalParams) (Goal, error)
	ListGoals(userId int) ([]Goal, error)
	CompleteGoal(id, ownerId int) (Goal, error)
	DeleteGoal(id int) error
}
