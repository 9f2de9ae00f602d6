package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultSpecialHands 默认番种开关，全部开启
// 引擎只保存并回显这些开关，不参与和牌判定
func DefaultSpecialHands() map[string]bool {
	names := []string{
		"pinhu", "iipeikou", "chantaiyao", "junchantaiyao", "honchantaiyao",
		"ittsuu", "ryanpeikou", "sanshokudoujun", "sanshokudoukou", "chanta",
		"honroutou", "shousangen", "honitsu", "chinitu", "tenhou", "chihihou",
		"rinshankaihou", "chankan", "haiteiraoyue", "houteiraoyui", "daisangen",
		"suuankou", "suuankoutanki", "tsuuiisou", "ryuuiisou", "chinroutou",
		"chuurenpoutou", "kunroutou", "daisuushi", "shosuushi", "suukantsu",
	}
	hands := make(map[string]bool, len(names))
	for _, name := range names {
		hands[name] = true
	}
	return hands
}

type specialHandsFile struct {
	SpecialHands map[string]bool `yaml:"special_hands"`
}

// LoadSpecialHands 读取番种开关文件，覆盖默认值
// path 为空或文件不存在时返回默认值
func LoadSpecialHands(path string) (map[string]bool, error) {
	hands := DefaultSpecialHands()
	if path == "" {
		return hands, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return hands, nil
	}
	if err != nil {
		return nil, err
	}

	var file specialHandsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse special hands %s: %w", path, err)
	}
	maps.Copy(hands, file.SpecialHands)
	return hands, nil
}
