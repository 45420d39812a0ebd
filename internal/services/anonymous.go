package services

import (
	"fmt"
	"math/rand"
)

var anonymousAdjectives = []string{
	"快乐的", "温暖的", "友善的", "勇敢的", "聪明的", "善良的", "开朗的", "害羞的",
	"好奇的", "冷静的", "活泼的", "温柔的", "坚强的", "幽默的", "自信的", "细心的",
}

var anonymousNouns = []string{
	"小熊", "小兔", "小猫", "小鸟", "小鱼", "小羊", "小鹿", "小狐狸",
	"小象", "小松鼠", "小熊猫", "小企鹅", "小海豚", "小蜜蜂", "小蝴蝶", "小星星",
}

// GenerateAnonymousName builds a display name like 温暖的小熊猫42.
func GenerateAnonymousName() string {
	adjective := anonymousAdjectives[rand.Intn(len(anonymousAdjectives))]
	noun := anonymousNouns[rand.Intn(len(anonymousNouns))]
	return fmt.Sprintf("%s%s%d", adjective, noun, rand.Intn(999)+1)
}
