package app

import (
	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/storefront/internal/service/workflow"
)

// createWorkflow создаёт order workflow с или без Kafka в зависимости от
// наличия kafka producer.
func createWorkflow(
	deps *Dependencies,
	kafkaProducer *kafka.Producer,
) *workflow.Workflow {
	if kafkaProducer != nil {
		return workflow.NewWorkflowWithKafka(
			deps.Orders,
			deps.Carts,
			deps.Products,
			deps.Ledger,
			deps.Gateway,
			deps.OutboxRepo,
			deps.TimelineRepo,
			kafkaProducer,
			deps.Logger.WithField("component", "workflow"),
		)
	}

	return workflow.NewWorkflow(
		deps.Orders,
		deps.Carts,
		deps.Products,
		deps.Ledger,
		deps.Gateway,
		deps.OutboxRepo,
		deps.TimelineRepo,
		deps.Logger.WithField("component", "workflow"),
	)
}
