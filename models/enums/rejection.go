package enums

// RejectionReason 预设的拒绝原因编码
type RejectionReason string

const (
	ReasonInappropriate RejectionReason = "inappropriate"
	ReasonSpam          RejectionReason = "spam"
	ReasonLowQuality    RejectionReason = "low_quality"
	ReasonRules         RejectionReason = "rules"
	ReasonOffensive     RejectionReason = "offensive"
	ReasonPersonal      RejectionReason = "personal"
	ReasonUnclear       RejectionReason = "unclear"
	ReasonCustom        RejectionReason = "custom"
)

// rejectionLabels 展示给管理员和投稿人的原因文本，顺序即按钮顺序
var rejectionLabels = []struct {
	Code  RejectionReason
	Label string
}{
	{ReasonInappropriate, "Inappropriate Content"},
	{ReasonSpam, "Spam or Duplicate"},
	{ReasonLowQuality, "Low Quality/Too Short"},
	{ReasonRules, "Violates Community Rules"},
	{ReasonOffensive, "Offensive Language"},
	{ReasonPersonal, "Too Personal/Identifying Info"},
	{ReasonUnclear, "Unclear or Confusing"},
	{ReasonCustom, "Custom Reason"},
}

// Label 返回原因的展示文本，未知编码返回 false
func (r RejectionReason) Label() (string, bool) {
	for _, item := range rejectionLabels {
		if item.Code == r {
			return item.Label, true
		}
	}
	return "", false
}

// RejectionReasonOption 一个可选的拒绝原因
type RejectionReasonOption struct {
	Code  RejectionReason `json:"code"`
	Label string          `json:"label"`
}

// RejectionReasonOptions 返回全部预设原因（包含 custom）
func RejectionReasonOptions() []RejectionReasonOption {
	out := make([]RejectionReasonOption, 0, len(rejectionLabels))
	for _, item := range rejectionLabels {
		out = append(out, RejectionReasonOption{Code: item.Code, Label: item.Label})
	}
	return out
}
