package database

import (
	"github.com/stretchr/testify/mock"
)

type MockNutriChatRepository struct {
	mock.Mock
}

func (m *MockNutriChatRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockNutriChatRepository) CreateUser(params CreateUserParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockNutriChatRepository) GetUserById(id int) (User, error) {
	args := m.Called(id)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockNutriChatRepository) GetUserByNombre(nombre string) (User, error) {
	args := m.Called(nombre)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockNutriChatRepository) ListUsers() ([]User, error) {
	args := m.Called()
	return args.Get(0).([]User), args.Error(1)
}
func (m *MockNutriChatRepository) DeleteUser(id int) error {
	args := m.Called(id)
	return args.Error(0)
}
func (m *MockNutriChatRepository) CreateMessage(params CreateMessageParams) (Message, error) {
	args := m.Called(params)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockNutriChatRepository) BroadcastMessages() ([]Message, error) {
	args := m.Called()
	return args.Get(0).([]Message), args.Error(1)
}
func (m *MockNutriChatRepository) DirectMessages(userId, peerId int) ([]Message, error) {
	args := m.Called(userId, peerId)
	return args.Get(0).([]Message), args.Error(1)
}
func (m *MockNutriChatRepository) CreateVideo(params CreateVideoParams) (Video, error) {
	args := m.Called(params)
	return args.Get(0).(Video), args.Error(1)
}
func (m *MockNutriChatRepository) ListVideos(userId int) ([]Video, error) {
	args := m.Called(userId)
	return args.Get(0).([]Video), args.Error(1)
}
func (m *MockNutriChatRepository) DeleteVideo(id int) error {
	args := m.Called(id)
	return args.Error(0)
}
func (m *MockNutriChatRepository) CreateGoal(params CreateGoalParams) (Goal, error) {
	args := m.Called(params)
	return args.Get(0).(Goal), args.Error(1)
}
func (m *MockNutriChatRepository) ListGoals(userId int) ([]Goal, error) {
	args := m.Called(userId)
	return args.Get(0).([]Goal), args.Error(1)
}
func (m *MockNutriChatRepository) CompleteGoal(id, ownerId int) (Goal, error) {
	args := m.Called(id, ownerId)
	return args.Get(0).(Goal), args.Error(1)
}
func (m *MockNutriChatRepository) DeleteGoal(id int) error {
	args := m.Called(id)
	return args.Error(0)
}
