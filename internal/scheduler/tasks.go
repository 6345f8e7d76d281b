package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskCampaignCountersRefresh = "campaigns.counters.refresh"

type CampaignCountersRefreshPayload struct {
	CampaignKey string `json:"campaignKey"`
}

func NewCampaignCountersRefreshTask(payload CampaignCountersRefreshPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCampaignCountersRefresh, data), nil
}

func ParseCampaignCountersRefreshPayload(task *asynq.Task) (CampaignCountersRefreshPayload, error) {
	var payload CampaignCountersRefreshPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return CampaignCountersRefreshPayload{}, err
	}
	return payload, nil
}
