package repository

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/qs3c/vidgen_server/internal/model"
	"github.com/qs3c/vidgen_server/internal/pkg/password"
)

// FileStore JSON 文件实现：每次调用整体读取、整体重写。
// 读取时损坏的文件按空集合处理，写入时拒绝覆盖损坏的文件。
type FileStore struct {
	usersPath  string
	ordersPath string
	mu         sync.Mutex
}

func NewFileStore(usersPath, ordersPath string) *FileStore {
	return &FileStore{
		usersPath:  usersPath,
		ordersPath: ordersPath,
	}
}

// Migrate 把旧版文件中的明文密码改写为哈希，返回改写的用户数
func (s *FileStore) Migrate() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, upgraded, err := s.readUsers()
	if err != nil {
		return 0, err
	}
	if upgraded == 0 {
		return 0, nil
	}
	return upgraded, writeJSON(s.usersPath, users, "    ")
}

// Check 两个文件都不存在或都能解析时返回 nil
func (s *FileStore) Check() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.decodeUsers(); err != nil {
		return err
	}
	_, err := s.readOrders()
	return err
}

func (s *FileStore) LoadUsers() (map[string]*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readUsersLenient()
}

// SaveUsers 整体替换用户文件
func (s *FileStore) SaveUsers(users map[string]*model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.decodeUsers(); err != nil {
		return err
	}
	for email, u := range users {
		u.Email = email
	}
	return writeJSON(s.usersPath, users, "    ")
}

func (s *FileStore) GetUser(email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.readUsersLenient()
	if err != nil {
		return nil, err
	}
	user, ok := users[email]
	if !ok {
		return nil, ErrNotFound
	}
	return user, nil
}

func (s *FileStore) SaveUser(user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, _, err := s.readUsers()
	if err != nil {
		return err
	}
	users[user.Email] = user
	return writeJSON(s.usersPath, users, "    ")
}

// AppendOrder 读出全部订单，追加一条后整体写回
func (s *FileStore) AppendOrder(order *model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders, err := s.readOrders()
	if err != nil {
		return err
	}
	for _, o := range orders {
		if o.ID == order.ID {
			return ErrDuplicateOrder
		}
	}
	orders = append(orders, order)
	return writeJSON(s.ordersPath, orders, "  ")
}

func (s *FileStore) LoadOrders() ([]*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders, err := s.readOrders()
	if errors.Is(err, ErrCorruptFile) {
		log.Printf("[store] %v, treating as empty", err)
		return []*model.Order{}, nil
	}
	return orders, err
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) readUsersLenient() (map[string]*model.User, error) {
	users, _, err := s.readUsers()
	if errors.Is(err, ErrCorruptFile) {
		log.Printf("[store] %v, treating as empty", err)
		return make(map[string]*model.User), nil
	}
	return users, err
}

// readUsers 解析用户文件并为旧版明文密码生成哈希
func (s *FileStore) readUsers() (map[string]*model.User, int, error) {
	users, err := s.decodeUsers()
	if err != nil {
		return nil, 0, err
	}

	upgraded := 0
	for _, u := range users {
		if u.PasswordHash == "" && u.LegacyPassword != "" {
			hash, err := password.Hash(u.LegacyPassword)
			if err != nil {
				return nil, 0, err
			}
			u.PasswordHash = hash
			upgraded++
		}
		u.LegacyPassword = ""
	}
	return users, upgraded, nil
}

// decodeUsers 文件不存在返回空集合，内容无法解析返回 ErrCorruptFile
func (s *FileStore) decodeUsers() (map[string]*model.User, error) {
	users := make(map[string]*model.User)
	data, err := readFile(s.usersPath)
	if err != nil || data == nil {
		return users, err
	}
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptFile, s.usersPath, err)
	}
	if users == nil {
		users = make(map[string]*model.User)
	}
	for email, u := range users {
		if u == nil {
			delete(users, email)
			continue
		}
		u.Email = email
	}
	return users, nil
}

func (s *FileStore) readOrders() ([]*model.Order, error) {
	data, err := readFile(s.ordersPath)
	if err != nil || data == nil {
		return []*model.Order{}, err
	}

	var orders []*model.Order
	if err := json.Unmarshal(data, &orders); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptFile, s.ordersPath, err)
	}
	kept := make([]*model.Order, 0, len(orders))
	for _, o := range orders {
		if o != nil {
			kept = append(kept, o)
		}
	}
	return kept, nil
}

// readFile 文件不存在或为空时返回 nil, nil
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	return data, nil
}

// writeJSON 先写临时文件再 rename，避免留下半截文件
func writeJSON(path string, v interface{}, indent string) error {
	data, err := json.MarshalIndent(v, "", indent)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
