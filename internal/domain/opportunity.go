package domain

import "time"

// OpportunityStage: 영업 파이프라인 단계
type OpportunityStage string

// 파이프라인 단계 상수 (선형 진행 + 종료 2종)
const (
	StageProspect   OpportunityStage = "prospect"    // 잠재 고객
	StageConsult    OpportunityStage = "consult"     // 상담 진행
	StageProposal   OpportunityStage = "proposal"    // 제안/견적
	StageContract   OpportunityStage = "contract"    // 청약 진행
	StageClosedWon  OpportunityStage = "closed_won"  // 계약 체결
	StageClosedLost OpportunityStage = "closed_lost" // 실패 종결
)

// stageOrder: 선형 단계의 진행 순서. 종결 단계는 포함하지 않는다.
var stageOrder = []OpportunityStage{StageProspect, StageConsult, StageProposal, StageContract}

// stageLabels: 단계별 한국어 표시 라벨
var stageLabels = map[OpportunityStage]string{
	StageProspect:   "잠재 고객",
	StageConsult:    "상담 진행",
	StageProposal:   "제안/견적",
	StageContract:   "청약 진행",
	StageClosedWon:  "계약 체결",
	StageClosedLost: "종결(실패)",
}

// IsValid: 알려진 파이프라인 단계인지 확인합니다.
func (s OpportunityStage) IsValid() bool {
	_, ok := stageLabels[s]
	return ok
}

// Label: 단계의 한국어 표시 라벨을 반환합니다.
func (s OpportunityStage) Label() string {
	if label, ok := stageLabels[s]; ok {
		return label
	}
	return string(s)
}

// IsClosed: 종결 단계(체결/실패)인지 확인합니다.
func (s OpportunityStage) IsClosed() bool {
	return s == StageClosedWon || s == StageClosedLost
}

// Next: 다음 선형 단계를 반환합니다. 마지막 선형 단계(청약 진행)의 다음은 계약 체결이다.
// 종결 단계에서는 진행할 수 없으므로 ok=false를 반환한다.
func (s OpportunityStage) Next() (OpportunityStage, bool) {
	if s.IsClosed() {
		return s, false
	}
	for i, stage := range stageOrder {
		if stage != s {
			continue
		}
		if i == len(stageOrder)-1 {
			return StageClosedWon, true
		}
		return stageOrder[i+1], true
	}
	return s, false
}

// Prev: 이전 선형 단계를 반환합니다. 첫 단계와 종결 단계에서는 ok=false.
func (s OpportunityStage) Prev() (OpportunityStage, bool) {
	if s.IsClosed() {
		return s, false
	}
	for i, stage := range stageOrder {
		if stage != s {
			continue
		}
		if i == 0 {
			return s, false
		}
		return stageOrder[i-1], true
	}
	return s, false
}

// CanTransitionTo: 현재 단계에서 target 단계로의 전이가 허용되는지 확인합니다.
// 허용 전이: 한 단계 전진, 한 단계 후퇴, 임의 선형 단계 -> 종결(실패).
func (s OpportunityStage) CanTransitionTo(target OpportunityStage) bool {
	if !target.IsValid() || s.IsClosed() {
		return false
	}
	if target == StageClosedLost {
		return true
	}
	if next, ok := s.Next(); ok && next == target {
		return true
	}
	if prev, ok := s.Prev(); ok && prev == target {
		return true
	}
	return false
}

// Opportunity: 고객을 파이프라인에 올린 영업 기회
type Opportunity struct {
	ID              string           `json:"id"`
	ClientID        string           `json:"clientId"`
	AgentID         string           `json:"agentId"`
	ProductCategory string           `json:"productCategory"` // 종신/건강/자동차 등
	ExpectedPremium int64            `json:"expectedPremium"` // 월 보험료 (원)
	Stage           OpportunityStage `json:"stage"`
	StageLabel      string           `json:"stageLabel"`
	Memo            string           `json:"memo,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// StageHistoryEntry: 단계 전이 이력의 한 항목
type StageHistoryEntry struct {
	ID            string           `json:"id"`
	OpportunityID string           `json:"opportunityId"`
	FromStage     OpportunityStage `json:"fromStage,omitempty"`
	ToStage       OpportunityStage `json:"toStage"`
	ChangedAt     time.Time        `json:"changedAt"`
}
