package mentor

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/SlpAus/adventurer-progression-backend/internal/platform/database"
)

// Info 是导师名录对外暴露的只读条目
type Info struct {
	MentorID    string
	Name        string
	Specialties []string
}

// repository 是mentor模块的中央数据仓库。
// 名录在启动时从SQLite整表加载到内存，之后只读；
// 重新加载（如热重建）时整体替换。
type repository struct {
	idToInfo map[string]Info
	ordered  []Info

	rwLock sync.RWMutex
}

// globalRepository 是仓库的私有单例实例
var globalRepository = &repository{}

// InitializeRepository 从SQLite加载导师名录，初始化内存仓库。
func InitializeRepository() error {
	var mentorsFromDB []Mentor
	if err := database.DB.Order("id asc").Find(&mentorsFromDB).Error; err != nil {
		return fmt.Errorf("无法从SQLite加载导师名录: %w", err)
	}

	idToInfo := make(map[string]Info, len(mentorsFromDB))
	ordered := make([]Info, 0, len(mentorsFromDB))

	for _, m := range mentorsFromDB {
		var specialties []string
		if m.Specialties != "" {
			if err := json.Unmarshal([]byte(m.Specialties), &specialties); err != nil {
				return fmt.Errorf("无法解析导师 %s 的专长列表: %w", m.MentorID, err)
			}
		}
		info := Info{
			MentorID:    m.MentorID,
			Name:        m.Name,
			Specialties: specialties,
		}
		idToInfo[m.MentorID] = info
		ordered = append(ordered, info)
	}

	globalRepository.rwLock.Lock()
	globalRepository.idToInfo = idToInfo
	globalRepository.ordered = ordered
	globalRepository.rwLock.Unlock()

	fmt.Printf("导师名录 (Repository) 初始化成功，加载了 %d 位导师。\n", len(ordered))
	return nil
}

// LookupMentor 按ID解析导师，返回名称与专长。
func LookupMentor(mentorID string) (Info, bool) {
	globalRepository.rwLock.RLock()
	defer globalRepository.rwLock.RUnlock()

	info, ok := globalRepository.idToInfo[mentorID]
	return info, ok
}

// ListMentors 返回名录中的全部导师，按加载顺序排列。
func ListMentors() []Info {
	globalRepository.rwLock.RLock()
	defer globalRepository.rwLock.RUnlock()

	list := make([]Info, len(globalRepository.ordered))
	copy(list, globalRepository.ordered)
	return list
}
