package recipe

import (
	"testing"

	"fridge-chef/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEmptyInput(t *testing.T) {
	assert.Empty(t, Decode(""))
	assert.Empty(t, Decode("   \n\t  "))
}

func TestDecodeDelimited(t *testing.T) {
	records := Decode("番茄炒蛋|||番茄,蛋|||切番茄~~炒蛋~~混合")

	require.Len(t, records, 1)
	assert.Equal(t, "番茄炒蛋", records[0].Name)
	assert.Equal(t, []string{"番茄", "蛋"}, records[0].Ingredients)
	assert.Equal(t, []string{"切番茄", "炒蛋", "混合"}, records[0].Steps)
}

func TestDecodeDelimitedMultipleRecords(t *testing.T) {
	text := "番茄炒蛋|||番茄,蛋|||切番茄~~炒蛋" + RecordSep + "滑蛋蝦仁|||蝦仁,蛋|||燙蝦仁~~炒蛋"

	records := Decode(text)

	require.Len(t, records, 2)
	assert.Equal(t, "番茄炒蛋", records[0].Name)
	assert.Equal(t, "滑蛋蝦仁", records[1].Name)
}

func TestDecodeDelimitedSkipsMalformedBlocks(t *testing.T) {
	// 第二塊只有兩個欄位，第三塊名稱空白，都該被跳過
	text := "番茄炒蛋|||番茄,蛋|||切番茄" + RecordSep + "只有|||兩欄" + RecordSep + "   |||蛋|||炒"

	records := Decode(text)

	require.Len(t, records, 1)
	assert.Equal(t, "番茄炒蛋", records[0].Name)
}

func TestDecodeStructuredJSON(t *testing.T) {
	text := `[{"title":"Soup","ingredients":["water"],"steps":["boil"],"time":"PT15M"}]`

	records := Decode(text)

	require.Len(t, records, 1)
	assert.Equal(t, "Soup", records[0].Name)
	assert.Equal(t, []string{"water"}, records[0].Ingredients)
	assert.Equal(t, []string{"boil"}, records[0].Steps)
	assert.Equal(t, "15分鐘", records[0].Duration)
}

func TestDecodeStructuredJSONWithFence(t *testing.T) {
	text := "```json\n[{\"title\":\"味噌湯\",\"ingredients\":[\"味噌\",\"豆腐\"],\"steps\":[\"煮滾\"],\"time\":\"PT1H30M\"}]\n```"

	records := Decode(text)

	require.Len(t, records, 1)
	assert.Equal(t, "味噌湯", records[0].Name)
	assert.Equal(t, "1小時30分鐘", records[0].Duration)
}

func TestDecodeStructuredJSONSkipsBlankTitle(t *testing.T) {
	text := `[{"title":"  ","ingredients":["x"],"steps":["y"]},{"title":"好菜","ingredients":["x"],"steps":["y"]}]`

	records := Decode(text)

	require.Len(t, records, 1)
	assert.Equal(t, "好菜", records[0].Name)
}

func TestDecodeFlexibleWithMarkers(t *testing.T) {
	text := "食譜名稱：蒜香高麗菜\n食材：高麗菜、蒜頭，鹽\n步驟：\n1. 洗菜\n2. 爆香蒜頭\n3. 下菜快炒"

	records := Decode(text)

	require.Len(t, records, 1)
	assert.Equal(t, "蒜香高麗菜", records[0].Name)
	assert.Equal(t, []string{"高麗菜", "蒜頭", "鹽"}, records[0].Ingredients)
	assert.Equal(t, []string{"洗菜", "爆香蒜頭", "下菜快炒"}, records[0].Steps)
}

func TestDecodeFlexibleMultipleSegments(t *testing.T) {
	text := "食譜名稱：A菜炒蛋\n食材：A菜，蛋\n步驟：1. 炒\n料理名稱：涼拌黃瓜\n食材：黃瓜\n做法：1. 拌"

	records := Decode(text)

	require.Len(t, records, 2)
	assert.Equal(t, "A菜炒蛋", records[0].Name)
	assert.Equal(t, "涼拌黃瓜", records[1].Name)
	assert.Equal(t, []string{"黃瓜"}, records[1].Ingredients)
}

func TestDecodeFlexibleFullWidthEnumeration(t *testing.T) {
	text := "食譜名稱：白粥\n食材：米\n步驟：１．洗米 ２．加水 ３．慢煮"

	records := Decode(text)

	require.Len(t, records, 1)
	assert.Equal(t, []string{"洗米", "加水", "慢煮"}, records[0].Steps)
}

func TestDecodeFlexibleFallbackName(t *testing.T) {
	// 沒有任何名稱標記時用編號佔位名稱，非空輸入保證至少一筆
	records := Decode("隨便聊聊今天吃什麼")

	require.Len(t, records, 1)
	assert.Equal(t, "食譜 1", records[0].Name)
	assert.Equal(t, []string{common.PlaceholderIngredients}, records[0].Ingredients)
	assert.Equal(t, []string{common.PlaceholderSteps}, records[0].Steps)
}

func TestDecodeFlexiblePlaceholderSubstitution(t *testing.T) {
	records := Decode("食譜名稱：神秘料理")

	require.Len(t, records, 1)
	assert.Equal(t, "神秘料理", records[0].Name)
	assert.Equal(t, []string{common.PlaceholderIngredients}, records[0].Ingredients)
	assert.Equal(t, []string{common.PlaceholderSteps}, records[0].Steps)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := []common.RecipeRecord{
		{
			Name:        "番茄炒蛋",
			Ingredients: []string{"番茄", "蛋"},
			Steps:       []string{"切番茄", "炒蛋", "混合"},
		},
		{
			Name:        "涼拌黃瓜",
			Ingredients: []string{"黃瓜", "蒜"},
			Steps:       []string{"拍黃瓜", "調味"},
		},
	}

	decoded := Decode(Encode(original))

	require.Len(t, decoded, len(original))
	for i := range original {
		assert.Equal(t, original[i].Name, decoded[i].Name)
		assert.Equal(t, original[i].Ingredients, decoded[i].Ingredients)
		assert.Equal(t, original[i].Steps, decoded[i].Steps)
	}
}

func TestEncodeEmpty(t *testing.T) {
	assert.Equal(t, "", Encode(nil))
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"minutes only", "PT15M", "15分鐘"},
		{"hours and minutes", "PT1H30M", "1小時30分鐘"},
		{"hours only", "PT2H", "2小時"},
		{"lowercase", "pt45m", "45分鐘"},
		{"zero components", "PT0H0M", "未指定"},
		{"empty", "", "未指定"},
		{"free text", "約20分鐘", "未指定"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatDuration(tc.raw))
		})
	}
}
