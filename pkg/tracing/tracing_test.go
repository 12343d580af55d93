package tracing

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// TestInitTracer 测试Tracer初始化
func TestInitTracer(t *testing.T) {
	shutdown, err := InitTracer("agrostock-test", "localhost:4317")
	if err != nil {
		t.Fatalf("初始化Tracer失败: %v", err)
	}
	defer shutdown(context.Background())

	// 验证全局TracerProvider已设置
	tracer := otel.Tracer("test")
	if tracer == nil {
		t.Error("全局TracerProvider未设置")
	}

	t.Log("✅ Tracer初始化成功")
}

// TestStartSpan 测试Span创建
func TestStartSpan(t *testing.T) {
	shutdown, err := InitTracer("agrostock-test", "localhost:4317")
	if err != nil {
		t.Fatalf("初始化Tracer失败: %v", err)
	}
	defer shutdown(context.Background())

	t.Run("创建根Span", func(t *testing.T) {
		ctx := context.Background()

		_, span := StartSpan(ctx, "agrostock-test", "AddBatch")
		defer span.End()

		if !span.SpanContext().IsValid() {
			t.Error("Span无效")
		}

		traceID := span.SpanContext().TraceID().String()
		if traceID == "" || traceID == "00000000000000000000000000000000" {
			t.Errorf("TraceID无效: %s", traceID)
		}

		t.Logf("✅ 根Span创建成功, TraceID=%s", traceID)
	})

	t.Run("子Span继承TraceID", func(t *testing.T) {
		ctx := context.Background()

		ctx, rootSpan := StartSpan(ctx, "agrostock-test", "AddBatch")
		defer rootSpan.End()

		rootTraceID := rootSpan.SpanContext().TraceID().String()
		rootSpanID := rootSpan.SpanContext().SpanID().String()

		_, childSpan := StartSpan(ctx, "agrostock-test", "RecalcStatus")
		defer childSpan.End()

		if childSpan.SpanContext().TraceID().String() != rootTraceID {
			t.Errorf("子Span的TraceID不匹配: root=%s, child=%s",
				rootTraceID, childSpan.SpanContext().TraceID().String())
		}
		if childSpan.SpanContext().SpanID().String() == rootSpanID {
			t.Error("子Span的SpanID不应与根Span相同")
		}
	})
}

// TestExtractTraceID 测试TraceID提取
func TestExtractTraceID(t *testing.T) {
	shutdown, err := InitTracer("agrostock-test", "localhost:4317")
	if err != nil {
		t.Fatalf("初始化Tracer失败: %v", err)
	}
	defer shutdown(context.Background())

	t.Run("从有效Context提取", func(t *testing.T) {
		ctx := context.Background()
		ctx, span := StartSpan(ctx, "agrostock-test", "GetItem")
		defer span.End()

		traceID := ExtractTraceID(ctx)
		if len(traceID) != 32 {
			t.Errorf("TraceID长度错误: expected=32, got=%d", len(traceID))
		}

		spanID := ExtractSpanID(ctx)
		if len(spanID) != 16 {
			t.Errorf("SpanID长度错误: expected=16, got=%d", len(spanID))
		}
	})

	t.Run("无Span的Context返回空", func(t *testing.T) {
		ctx := context.Background()

		if traceID := ExtractTraceID(ctx); traceID != "" {
			t.Errorf("期望空字符串，实际: %s", traceID)
		}
		if spanID := ExtractSpanID(ctx); spanID != "" {
			t.Errorf("期望空字符串，实际: %s", spanID)
		}
	})
}

// TestBatchInboundScenario 模拟批次入库流程的完整链路
func TestBatchInboundScenario(t *testing.T) {
	shutdown, err := InitTracer("agrostock-test", "localhost:4317")
	if err != nil {
		t.Fatalf("初始化Tracer失败: %v", err)
	}
	defer shutdown(context.Background())

	ctx := context.Background()

	if err := addBatchFlow(ctx, 123, "B20250815"); err != nil {
		t.Errorf("入库流程失败: %v", err)
	}

	t.Log("✅ 入库链路测试通过，可在Jaeger UI查看: http://localhost:16686")
}

// 模拟业务流程：批次入库
func addBatchFlow(ctx context.Context, itemID uint, batchID string) error {
	ctx, span := StartSpan(ctx, "agrostock-test", "AddBatch")
	defer span.End()

	span.SetAttributes(
		attribute.Int("item_id", int(itemID)),
		attribute.String("batch_id", batchID),
	)

	if err := lockItem(ctx, itemID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := recalcStatus(ctx, itemID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "入库成功")
	return nil
}

// 模拟业务流程：行锁定商品
func lockItem(ctx context.Context, itemID uint) error {
	_, span := StartSpan(ctx, "agrostock-test", "LockItem")
	defer span.End()

	span.SetAttributes(attribute.Int("item_id", int(itemID)))
	time.Sleep(10 * time.Millisecond)

	span.SetStatus(codes.Ok, "锁定成功")
	return nil
}

// 模拟业务流程：重算库存状态
func recalcStatus(ctx context.Context, itemID uint) error {
	_, span := StartSpan(ctx, "agrostock-test", "RecalcStatus")
	defer span.End()

	span.SetAttributes(attribute.Int("item_id", int(itemID)))
	time.Sleep(5 * time.Millisecond)

	span.SetStatus(codes.Ok, "状态重算完成")
	return nil
}
