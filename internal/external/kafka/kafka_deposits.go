package kafka

import (
	"context"
	"fmt"
	"os"

	"github.com/segmentio/kafka-go"
)

// Прием заявок на сдачу вторсырья с киосков пунктов приема
type KafkaDeposits struct {
	reader *kafka.Reader
}

func GetNewReader(topic string) (reader *KafkaDeposits, err error) {
	// config
	kafkaurl := os.Getenv("KAFKA_DEPOSIT_URL")
	if kafkaurl == "" {
		return nil, fmt.Errorf("env KAFKA_DEPOSIT_URL is not set")
	}
	kafkaport := os.Getenv("KAFKA_DEPOSIT_PORT")
	if kafkaport == "" {
		return nil, fmt.Errorf("env KAFKA_DEPOSIT_PORT is not set")
	}

	kafkaconfig := kafka.ReaderConfig{
		Brokers: []string{kafkaurl + ":" + kafkaport},
		Topic:   topic,
		GroupID: "deposits_ledger",
	}
	return &KafkaDeposits{kafka.NewReader(kafkaconfig)}, nil
}

func (k *KafkaDeposits) GetNewMessage(ctx context.Context) (depositJson string, err error) {
	msg, err := k.reader.ReadMessage(ctx)
	if err != nil {
		return "", err
	}
	return string(msg.Value), nil
}

func (k *KafkaDeposits) CloseReader() {
	k.reader.Close()
}
